package picker

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/activity"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

var ErrNoEligibleTypes = errors.New("no eligible quest types")

// Input is everything a pick depends on besides the random draw.
type Input struct {
	Counters activity.Counters
	Criminal bool
	History  *History
	// Eligible limits the pick to types that currently have a usable template.
	// Nil means every type with a base weight.
	Eligible []quest.Type
}

// Result is the chosen type plus the normalized weights it was drawn from.
type Result struct {
	Type    quest.Type             `json:"type"`
	Weights map[quest.Type]float64 `json:"weights"`
	Persona activity.Persona       `json:"persona"`
	Roll    float64                `json:"roll"`
}

// Pick scores every eligible type and draws one. The history is not modified; callers
// push the result once the quest is actually generated.
func Pick(cfg Config, in Input, rng *rand.Rand) (Result, error) {
	weights, err := Weights(cfg, in)
	if err != nil {
		return Result{}, err
	}
	u := rng.Float64()
	return Result{
		Type:    Sample(weights, u),
		Weights: weights,
		Persona: activity.PersonaOf(in.Counters, in.Criminal),
		Roll:    u,
	}, nil
}

// Weights returns the normalized selection probabilities for each eligible type.
func Weights(cfg Config, in Input) (map[quest.Type]float64, error) {
	persona := activity.PersonaOf(in.Counters, in.Criminal)
	raw := make(map[quest.Type]float64)

	for _, t := range quest.AllTypes {
		base, ok := cfg.BaseWeights[t]
		if !ok || base <= 0 {
			continue
		}
		if in.Eligible != nil && !slices.Contains(in.Eligible, t) {
			continue
		}

		w := base * (1 + cfg.AffinityGain*affinity(cfg, t, in.Counters))
		if bias, ok := cfg.PersonaBias[persona][t]; ok && bias > 0 {
			w *= bias
		}
		w *= recencyFactor(cfg, t, in.History)
		w *= exposureFactor(cfg, t, in.History)
		raw[t] = clamp(w, cfg.MinWeight, cfg.MaxWeight)
	}

	if len(raw) == 0 {
		return nil, ErrNoEligibleTypes
	}

	var sum float64
	for _, w := range raw {
		sum += w
	}
	for t := range raw {
		raw[t] /= sum
	}
	return raw, nil
}

// Sample walks the cumulative distribution in canonical type order and returns the
// first type whose running sum exceeds u.
func Sample(weights map[quest.Type]float64, u float64) quest.Type {
	var acc float64
	var last quest.Type
	for _, t := range quest.AllTypes {
		w, ok := weights[t]
		if !ok {
			continue
		}
		acc += w
		last = t
		if u < acc {
			return t
		}
	}
	return last
}

// affinity maps the counters relevant to t onto [0,1) with 1-exp(-x).
func affinity(cfg Config, t quest.Type, c activity.Counters) float64 {
	var x float64
	switch t {
	case quest.TypeExplore:
		x = c.DistanceTraveled/cfg.DistanceScale + (c.TimeSinceLastQuest+c.TimeInIdle)/cfg.TimeScale
	case quest.TypeKill:
		x = float64(c.EnemiesKilled) / cfg.KillScale
	case quest.TypeSteal:
		x = float64(c.CrimesCommitted) / cfg.CrimeScale
	case quest.TypeCollect:
		x = float64(c.SecretsFound)/cfg.SecretScale + float64(c.FightsAvoided)/cfg.AvoidScale/2
	case quest.TypeDeliver:
		x = float64(c.FightsAvoided)/cfg.AvoidScale + c.DistanceTraveled/cfg.DistanceScale/2
	}
	if x <= 0 {
		return 0
	}
	return 1 - math.Exp(-x)
}

// recencyFactor penalizes the last pick, and again when it filled the whole recent window.
func recencyFactor(cfg Config, t quest.Type, h *History) float64 {
	last, ok := h.Last()
	if !ok || last != t {
		return 1
	}
	f := cfg.RecencyPenalty
	recent := h.Recent(cfg.RecentWindow)
	if len(recent) >= cfg.RecentWindow {
		repeated := true
		for _, p := range recent {
			if p != t {
				repeated = false
				break
			}
		}
		if repeated {
			f *= cfg.RepeatPenalty
		}
	}
	return f
}

// exposureFactor nudges the long-run mix toward the configured targets.
func exposureFactor(cfg Config, t quest.Type, h *History) float64 {
	n := h.Len()
	if n == 0 || n < cfg.MinHistory || cfg.CorrectionStrength == 0 {
		return 1
	}
	target := cfg.target(t)
	if target <= 0 {
		return 1
	}
	floor := 1 / (2 * float64(max(cfg.HistorySize, n)))
	empirical := math.Max(float64(h.Count(t))/float64(n), floor)
	return math.Pow(target/empirical, cfg.CorrectionStrength)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
