package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusfound/backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// itemTypeParam validates the {type} URL segment (lost or found).
func itemTypeParam(raw string) (models.ItemType, bool) {
	t := models.ItemType(raw)
	return t, t.Valid()
}
