package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/middleware"
	"github.com/campusfound/backend/internal/models"
	"github.com/campusfound/backend/internal/services"
)

type ItemHandler struct {
	itemService services.ItemService
}

func NewItemHandler(itemService services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		log.Println("[CreateItem] Unauthorized - no user ID in context")
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}

	var req models.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(itemType); len(errs) > 0 {
		log.Printf("[CreateItem] Validation errors: %v", errs)
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	item, err := h.itemService.Create(actor, itemType, &req)
	if err != nil {
		log.Printf("[CreateItem] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create item"))
		return
	}

	log.Printf("[CreateItem] %s item created: %s", itemType, item.ID)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(item))
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	item, err := h.itemService.GetByID(itemType, itemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get item"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(item))
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	page, err := h.itemService.List(itemType, &models.ListItemsQuery{
		Category: query.Get("category"),
		Location: query.Get("location"),
		Cursor:   query.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		if errors.Is(err, services.ErrBadInput) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid cursor"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list items"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(page))
}

func (h *ItemHandler) ListMyItems(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}

	items, err := h.itemService.ListByReporter(itemType, actor.UID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list items"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(items))
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	err := h.itemService.Delete(actor, itemType, itemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		if errors.Is(err, services.ErrUnauthorized) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to delete this item"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete item"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Item deleted successfully"}))
}

// MarkDone advances the item's lifecycle one step for the acting user:
// finder confirming delivery, claimer confirming receipt, finder closing
// the return, or a lost-item owner recording progress.
func (h *ItemHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	item, err := h.itemService.MarkDone(actor, itemType, itemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		if errors.Is(err, lifecycle.ErrNotAllowed) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to update this item's status"))
			return
		}
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Item is not in a state this action can advance"))
			return
		}
		log.Printf("[MarkDone] item=%s error=%v", itemID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update item status"))
		return
	}

	log.Printf("[MarkDone] item=%s status=%s by=%s", item.ID, item.Status, actor.UID)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(item))
}
