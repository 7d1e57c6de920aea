package picker

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/activity"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// Config tunes the weighted quest-type picker. Campaigns override it from picker.yaml;
// fields left out keep DefaultConfig values.
type Config struct {
	BaseWeights map[quest.Type]float64 `json:"base_weights" yaml:"base_weights"`
	// Targets is the long-run share each type should get. Types missing here target
	// their share of the base weights.
	Targets map[quest.Type]float64 `json:"targets,omitempty" yaml:"targets,omitempty"`

	AffinityGain  float64 `json:"affinity_gain" yaml:"affinity_gain"`
	DistanceScale float64 `json:"distance_scale" yaml:"distance_scale"`
	TimeScale     float64 `json:"time_scale" yaml:"time_scale"`
	KillScale     float64 `json:"kill_scale" yaml:"kill_scale"`
	CrimeScale    float64 `json:"crime_scale" yaml:"crime_scale"`
	SecretScale   float64 `json:"secret_scale" yaml:"secret_scale"`
	AvoidScale    float64 `json:"avoid_scale" yaml:"avoid_scale"`

	PersonaBias map[activity.Persona]map[quest.Type]float64 `json:"persona_bias,omitempty" yaml:"persona_bias,omitempty"`

	HistorySize    int     `json:"history_size" yaml:"history_size"`
	RecentWindow   int     `json:"recent_window" yaml:"recent_window"`
	RecencyPenalty float64 `json:"recency_penalty" yaml:"recency_penalty"`
	RepeatPenalty  float64 `json:"repeat_penalty" yaml:"repeat_penalty"`

	MinHistory         int     `json:"min_history" yaml:"min_history"`
	CorrectionStrength float64 `json:"correction_strength" yaml:"correction_strength"`

	MinWeight float64 `json:"min_weight" yaml:"min_weight"`
	MaxWeight float64 `json:"max_weight" yaml:"max_weight"`
}

func DefaultConfig() Config {
	return Config{
		BaseWeights: map[quest.Type]float64{
			quest.TypeExplore: 1.0,
			quest.TypeKill:    1.0,
			quest.TypeCollect: 1.0,
			quest.TypeDeliver: 0.8,
			quest.TypeSteal:   0.6,
		},
		AffinityGain:  1.5,
		DistanceScale: 400,
		TimeScale:     90,
		KillScale:     6,
		CrimeScale:    3,
		SecretScale:   3,
		AvoidScale:    4,
		PersonaBias: map[activity.Persona]map[quest.Type]float64{
			activity.PersonaFighter:   {quest.TypeKill: 1.5},
			activity.PersonaCriminal:  {quest.TypeSteal: 1.75, quest.TypeDeliver: 0.75},
			activity.PersonaExplorer:  {quest.TypeExplore: 1.5},
			activity.PersonaCollector: {quest.TypeCollect: 1.4, quest.TypeDeliver: 1.2},
		},
		HistorySize:        12,
		RecentWindow:       2,
		RecencyPenalty:     0.5,
		RepeatPenalty:      0.35,
		MinHistory:         4,
		CorrectionStrength: 0.5,
		MinWeight:          0.02,
		MaxWeight:          5,
	}
}

var ErrInvalidConfig = errors.New("invalid picker config")

// Validate reports the first nonsensical setting.
func (c Config) Validate() error {
	if len(c.BaseWeights) == 0 {
		return fmt.Errorf("%w: no base weights", ErrInvalidConfig)
	}
	for t, w := range c.BaseWeights {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown quest type %q", ErrInvalidConfig, t)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative base weight for %s", ErrInvalidConfig, t)
		}
	}
	for t, f := range c.Targets {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown quest type %q in targets", ErrInvalidConfig, t)
		}
		if f <= 0 || f > 1 {
			return fmt.Errorf("%w: target for %s must be in (0,1]", ErrInvalidConfig, t)
		}
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("%w: history_size must be at least 1", ErrInvalidConfig)
	}
	if c.RecentWindow < 2 || c.RecentWindow > c.HistorySize {
		return fmt.Errorf("%w: recent_window must be between 2 and history_size", ErrInvalidConfig)
	}
	if c.RecencyPenalty <= 0 || c.RecencyPenalty > 1 || c.RepeatPenalty <= 0 || c.RepeatPenalty > 1 {
		return fmt.Errorf("%w: penalties must be in (0,1]", ErrInvalidConfig)
	}
	if c.MinWeight <= 0 || c.MaxWeight < c.MinWeight {
		return fmt.Errorf("%w: need 0 < min_weight <= max_weight", ErrInvalidConfig)
	}
	if c.CorrectionStrength < 0 || c.AffinityGain < 0 {
		return fmt.Errorf("%w: correction_strength and affinity_gain must be non-negative", ErrInvalidConfig)
	}
	for name, s := range map[string]float64{
		"distance_scale": c.DistanceScale, "time_scale": c.TimeScale, "kill_scale": c.KillScale,
		"crime_scale": c.CrimeScale, "secret_scale": c.SecretScale, "avoid_scale": c.AvoidScale,
	} {
		if s <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	return nil
}

// target returns the desired long-run fraction for t.
func (c Config) target(t quest.Type) float64 {
	if f, ok := c.Targets[t]; ok {
		return f
	}
	var sum float64
	for _, w := range c.BaseWeights {
		sum += w
	}
	if sum == 0 {
		return 0
	}
	return c.BaseWeights[t] / sum
}
