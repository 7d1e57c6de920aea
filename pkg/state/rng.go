package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Source is a PCG random source that survives a save/load round trip, so a game replays
// the same rolls no matter which worker applies its actions.
type Source struct {
	pcg *rand.PCG
}

func NewSource(seed1, seed2 uint64) *Source {
	return &Source{pcg: rand.NewPCG(seed1, seed2)}
}

// SourceFromID seeds a source from a game id.
func SourceFromID(id uuid.UUID) *Source {
	return NewSource(binary.LittleEndian.Uint64(id[:8]), binary.LittleEndian.Uint64(id[8:]))
}

// Rand returns a generator drawing from the source.
func (s *Source) Rand() *rand.Rand {
	if s.pcg == nil {
		s.pcg = rand.NewPCG(0, 0)
	}
	return rand.New(s.pcg)
}

func (s *Source) MarshalJSON() ([]byte, error) {
	if s.pcg == nil {
		return []byte("null"), nil
	}
	b, err := s.pcg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rng: %w", err)
	}
	return json.Marshal(b)
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var b []byte
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) == 0 {
		s.pcg = nil
		return nil
	}
	s.pcg = new(rand.PCG)
	if err := s.pcg.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("failed to unmarshal rng: %w", err)
	}
	return nil
}
