package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/middleware"
	"github.com/campusfound/backend/internal/models"
	"github.com/campusfound/backend/internal/services"
)

type ClaimHandler struct {
	workflow services.WorkflowService
}

func NewClaimHandler(workflow services.WorkflowService) *ClaimHandler {
	return &ClaimHandler{workflow: workflow}
}

// FileClaim creates a pending ownership claim on a found item. Filing never
// changes the item's status; only finder-side approval does.
func (h *ClaimHandler) FileClaim(w http.ResponseWriter, r *http.Request) {
	claimant := middleware.CurrentUser(r.Context())
	if claimant.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	if itemType, ok := itemTypeParam(chi.URLParam(r, "type")); !ok || itemType != models.TypeFound {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Claims can only be filed on found items"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var req models.FileClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	claim, err := h.workflow.FileClaim(claimant, itemID, &req)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		if errors.Is(err, lifecycle.ErrNotAllowed) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You cannot claim your own report"))
			return
		}
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Item is not open for claims"))
			return
		}
		log.Printf("[FileClaim] item=%s error=%v", itemID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to file claim"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(claim))
}

func (h *ClaimHandler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	h.resolveClaim(w, r, true)
}

func (h *ClaimHandler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	h.resolveClaim(w, r, false)
}

func (h *ClaimHandler) resolveClaim(w http.ResponseWriter, r *http.Request, approve bool) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	claimID := chi.URLParam(r, "claimId")

	var claim *models.Claim
	var err error
	if approve {
		claim, err = h.workflow.ApproveClaim(actor, claimID)
	} else {
		claim, err = h.workflow.RejectClaim(actor, claimID)
	}
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Claim not found"))
			return
		}
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item no longer exists"))
			return
		}
		if errors.Is(err, services.ErrUnauthorized) || errors.Is(err, lifecycle.ErrNotAllowed) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only the finder can resolve this claim"))
			return
		}
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Claim or item is no longer in a resolvable state"))
			return
		}
		log.Printf("[ResolveClaim] claim=%s error=%v", claimID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to resolve claim"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(claim))
}

func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	claims, err := h.workflow.ListClaims(actor.UID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list claims"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(claims))
}
