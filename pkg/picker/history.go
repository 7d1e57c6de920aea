package picker

import "github.com/jwebster45206/quest-engine/pkg/quest"

// History is a bounded queue of past picks, oldest first.
type History struct {
	Size  int          `json:"size"`
	Picks []quest.Type `json:"picks,omitempty"`
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{Size: size}
}

// Resize changes the bound, dropping the oldest picks that no longer fit.
func (h *History) Resize(size int) {
	if size < 1 {
		size = 1
	}
	h.Size = size
	if over := len(h.Picks) - size; over > 0 {
		h.Picks = append(h.Picks[:0:0], h.Picks[over:]...)
	}
}

// Push appends t and drops the oldest entries past Size.
func (h *History) Push(t quest.Type) {
	h.Picks = append(h.Picks, t)
	if over := len(h.Picks) - h.Size; over > 0 {
		h.Picks = append(h.Picks[:0:0], h.Picks[over:]...)
	}
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Picks)
}

func (h *History) Last() (quest.Type, bool) {
	if h.Len() == 0 {
		return "", false
	}
	return h.Picks[len(h.Picks)-1], true
}

// Recent returns up to n of the newest picks, oldest first.
func (h *History) Recent(n int) []quest.Type {
	if h.Len() == 0 || n <= 0 {
		return nil
	}
	if n > len(h.Picks) {
		n = len(h.Picks)
	}
	return h.Picks[len(h.Picks)-n:]
}

func (h *History) Count(t quest.Type) int {
	if h == nil {
		return 0
	}
	n := 0
	for _, p := range h.Picks {
		if p == t {
			n++
		}
	}
	return n
}
