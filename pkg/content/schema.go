package content

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema describes a campaign as a single document, the shape campaign.yaml takes when
// every section is inlined.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Campaign))
	schema.Title = "Quest Engine Campaign"
	schema.Description = "Items, enemies, NPCs, traders, dialogue, quest templates, key quests, atlas, chests and picker tuning"
	return schema
}

// SchemaJSON returns the indented schema document.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
