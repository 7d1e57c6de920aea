package world

import "math"

// Checkpoint is a respawn point. Town checkpoints are where wanted players are not sent.
type Checkpoint struct {
	ID       string `json:"id" yaml:"id"`
	Position Vec3   `json:"position" yaml:"position"`
	Town     bool   `json:"town,omitempty" yaml:"town,omitempty"`
}

// ClosestCheckpoint returns the checkpoint nearest to from.
func ClosestCheckpoint(cps []Checkpoint, from Vec3) (Checkpoint, bool) {
	best := -1
	bestSq := math.Inf(1)
	for i, cp := range cps {
		if d := cp.Position.SqrDistance(from); d < bestSq {
			best, bestSq = i, d
		}
	}
	if best < 0 {
		return Checkpoint{}, false
	}
	return cps[best], true
}

// SpawnPoint resolves the current respawn position: the saved checkpoint if it still
// exists in the atlas, otherwise the atlas default spawn.
func (a *Atlas) SpawnPoint(checkpointID string) Vec3 {
	for _, cp := range a.Checkpoints {
		if cp.ID == checkpointID {
			return cp.Position
		}
	}
	return a.Spawn
}
