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

type ContactHandler struct {
	workflow services.WorkflowService
}

func NewContactHandler(workflow services.WorkflowService) *ContactHandler {
	return &ContactHandler{workflow: workflow}
}

func (h *ContactHandler) FileContactRequest(w http.ResponseWriter, r *http.Request) {
	requester := middleware.CurrentUser(r.Context())
	if requester.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var req models.FileContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	request, err := h.workflow.FileContactRequest(requester, itemType, itemID, &req)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		if errors.Is(err, lifecycle.ErrNotAllowed) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You cannot contact yourself about your own report"))
			return
		}
		log.Printf("[FileContactRequest] item=%s error=%v", itemID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to send contact request"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(request))
}

func (h *ContactHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, true)
}

func (h *ContactHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, false)
}

func (h *ContactHandler) resolveRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	requestID := chi.URLParam(r, "requestId")

	var request *models.ContactRequest
	var err error
	if approve {
		request, err = h.workflow.ApproveContactRequest(actor, requestID)
	} else {
		request, err = h.workflow.RejectContactRequest(actor, requestID)
	}
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Contact request not found"))
			return
		}
		if errors.Is(err, services.ErrUnauthorized) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only the recipient can resolve this request"))
			return
		}
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Request has already been resolved"))
			return
		}
		log.Printf("[ResolveContactRequest] request=%s error=%v", requestID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to resolve contact request"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(request))
}

func (h *ContactHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	requestID := chi.URLParam(r, "requestId")

	err := h.workflow.DeleteContactRequest(actor, requestID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Contact request not found"))
			return
		}
		if errors.Is(err, services.ErrUnauthorized) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to delete this request"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete contact request"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Contact request deleted successfully"}))
}

// ContactStatus reports whether the caller has already filed a contact
// request for the item. Clients use it to hide the contact affordance.
func (h *ContactHandler) ContactStatus(w http.ResponseWriter, r *http.Request) {
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

	contacted, err := h.workflow.HasContacted(actor.UID, itemType, itemID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to check contact status"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]bool{"contacted": contacted}))
}

func (h *ContactHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	if actor.UID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	requests, err := h.workflow.ListContactRequests(actor.UID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list contact requests"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(requests))
}
