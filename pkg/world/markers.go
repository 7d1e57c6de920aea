package world

// IconType is the map icon shown for a marker.
type IconType string

const (
	IconLandmark    IconType = "landmark"
	IconTrader      IconType = "trader"
	IconQuestGiver  IconType = "quest_giver"
	IconQuestTarget IconType = "quest_target"
	IconPlayer      IconType = "player"
	IconCustom      IconType = "custom"
)

// Marker is a map pin. Hosts render them; the engine only tracks them.
type Marker struct {
	ID       string   `json:"id"`
	Position Vec3     `json:"position"`
	Type     IconType `json:"type"`
	Active   bool     `json:"active"`
	Color    string   `json:"color,omitempty"`
	Heading  float64  `json:"heading,omitempty"`
}

// Markers is keyed by marker id.
type Markers map[string]*Marker

// AddOrUpdate inserts m or refreshes an existing marker with the same id.
// It reports whether anything a renderer cares about changed.
func (ms Markers) AddOrUpdate(m Marker) bool {
	if m.ID == "" {
		return false
	}
	old, ok := ms[m.ID]
	if !ok {
		cp := m
		ms[m.ID] = &cp
		return true
	}
	structural := old.Type != m.Type || old.Color != m.Color || old.Active != m.Active
	old.Position = m.Position
	old.Heading = m.Heading
	if structural {
		old.Type = m.Type
		old.Color = m.Color
		old.Active = m.Active
	}
	return structural
}

func (ms Markers) AddSimple(id string, pos Vec3, t IconType) bool {
	return ms.AddOrUpdate(Marker{ID: id, Position: pos, Type: t, Active: true})
}

func (ms Markers) SetActive(id string, active bool) bool {
	m, ok := ms[id]
	if !ok || m.Active == active {
		return false
	}
	m.Active = active
	return true
}

func (ms Markers) Remove(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := ms[id]; !ok {
		return false
	}
	delete(ms, id)
	return true
}
