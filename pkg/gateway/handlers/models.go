package handlers

import (
	"net/http"

	"github.com/w93163red/LivCap-Translate/pkg/gateway"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// ModelsHandler serves the model catalog. Only native backend names
// are advertised; aliases resolve on the completion path but are not
// listed.
type ModelsHandler struct {
	models ModelResolver
}

// NewModelsHandler creates a model catalog handler.
func NewModelsHandler(resolver ModelResolver) *ModelsHandler {
	return &ModelsHandler{models: resolver}
}

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "the model catalog only accepts GET", http.StatusMethodNotAllowed)
		return
	}

	ids := h.models.List()
	created := h.models.Created().Unix()

	data := make([]types.Model, 0, len(ids))
	for _, id := range ids {
		data = append(data, types.Model{
			ID:      id,
			Object:  "model",
			Created: created,
			OwnedBy: "google",
		})
	}

	_ = gateway.RespondJSON(w, http.StatusOK, types.ModelList{
		Object: "list",
		Data:   data,
	})
}
