package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// CampaignDetail is a campaign summary with the size of its content.
type CampaignDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	KeyQuests   []string `json:"key_quests"`
	Templates   int      `json:"templates"`
	NPCs        int      `json:"npcs"`
	Traders     int      `json:"traders"`
}

type CampaignHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCampaignHandler(storage storage.Storage, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{storage: storage, logger: logger}
}

// ServeHTTP handles
// GET /v1/campaigns      - list campaigns
// GET /v1/campaigns/{id} - describe one campaign
func (h *CampaignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/campaigns"), "/")
	if id == "" {
		list, err := h.storage.ListCampaigns(r.Context())
		if err != nil {
			h.logger.Error("Failed to list campaigns", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list campaigns")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, list)
		return
	}

	c, err := h.storage.GetCampaign(r.Context(), id)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to load campaign")
		return
	}
	d := CampaignDetail{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		KeyQuests:   make([]string, 0, len(c.KeyQuests)),
		Templates:   len(c.Templates),
		NPCs:        len(c.NPCs),
		Traders:     len(c.Traders),
	}
	for _, k := range c.KeyQuests {
		d.KeyQuests = append(d.KeyQuests, k.Title)
	}
	writeJSON(w, h.logger, http.StatusOK, d)
}
