package activity

// Persona is a coarse read of how the player has been playing.
type Persona string

const (
	PersonaExplorer  Persona = "explorer"
	PersonaFighter   Persona = "fighter"
	PersonaCriminal  Persona = "criminal"
	PersonaCollector Persona = "collector"
	PersonaNeutral   Persona = "neutral"
)

// Persona thresholds
const (
	fighterKills       = 5
	explorerDistance   = 500.0
	explorerQuestIdle  = 60.0
	collectorAvoidance = 3
)

// PersonaOf classifies counters. Criminal status comes from world tags, so the caller
// supplies it.
func PersonaOf(c Counters, criminal bool) Persona {
	switch {
	case criminal:
		return PersonaCriminal
	case c.EnemiesKilled > fighterKills:
		return PersonaFighter
	case c.DistanceTraveled > explorerDistance || c.TimeSinceLastQuest > explorerQuestIdle:
		return PersonaExplorer
	case c.SecretsFound > 0 || c.FightsAvoided > collectorAvoidance:
		return PersonaCollector
	default:
		return PersonaNeutral
	}
}
