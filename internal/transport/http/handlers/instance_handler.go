package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/service"
	"github.com/commune-hq/commune/internal/transport/http/middleware"
	"github.com/commune-hq/commune/pkg/validator"
)

type InstanceHandler struct {
	instanceService *service.InstanceService
}

func NewInstanceHandler(instanceService *service.InstanceService) *InstanceHandler {
	return &InstanceHandler{instanceService: instanceService}
}

func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	instances, err := h.instanceService.List(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list instances failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if instances == nil {
		instances = []domain.Instance{}
	}
	writeJSON(w, http.StatusOK, instances)
}

func (h *InstanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}

	inst, err := h.instanceService.Get(r.Context(), instanceID)
	if err != nil {
		if errors.Is(err, service.ErrInstanceNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Instance not found")
		} else {
			logrus.WithError(err).Error("get instance failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, inst)
}

func (h *InstanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var input service.CreateInstanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateInstance(input.Name, input.Domain); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	inst, err := h.instanceService.Create(r.Context(), actorID, input)
	if err != nil {
		if errors.Is(err, service.ErrDomainTaken) {
			writeError(w, http.StatusConflict, "DOMAIN_TAKEN", "An instance with this domain already exists")
		} else {
			logrus.WithError(err).Error("create instance failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, inst)
}

func (h *InstanceHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}

	var input service.UpdateSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	inst, err := h.instanceService.UpdateSettings(r.Context(), actorID, instanceID, input)
	if err != nil {
		h.writeInstanceError(w, err, "update settings failed")
		return
	}

	writeJSON(w, http.StatusOK, inst)
}

func (h *InstanceHandler) Activities(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.instanceService.Activities(r.Context(), actorID, instanceID, limit)
	if err != nil {
		h.writeInstanceError(w, err, "list activities failed")
		return
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *InstanceHandler) ListFederation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}

	links, err := h.instanceService.ListFederation(r.Context(), actorID, instanceID)
	if err != nil {
		h.writeInstanceError(w, err, "list federation failed")
		return
	}
	if links == nil {
		links = []domain.FederatedInstance{}
	}
	writeJSON(w, http.StatusOK, links)
}

// RequestFederation opens a pending link to a peer instance and returns the
// link token the peer's admin must present to accept it.
func (h *InstanceHandler) RequestFederation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}

	var body struct {
		PeerID int64 `json:"peer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, token, err := h.instanceService.RequestFederation(r.Context(), actorID, instanceID, body.PeerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFederation):
			writeError(w, http.StatusBadRequest, "SELF_FEDERATION", "An instance cannot federate with itself")
		case errors.Is(err, service.ErrAlreadyFederated):
			writeError(w, http.StatusConflict, "ALREADY_FEDERATED", "A federation link already exists for this pair")
		default:
			h.writeInstanceError(w, err, "request federation failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"federation": link,
		"link_token": token,
	})
}

func (h *InstanceHandler) AcceptFederation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.instanceService.AcceptFederation(r.Context(), actorID, body.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLinkToken):
			writeError(w, http.StatusBadRequest, "INVALID_LINK_TOKEN", "Invalid or expired federation link token")
		case errors.Is(err, service.ErrFederationNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Federation link not found")
		default:
			h.writeInstanceError(w, err, "accept federation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, link)
}

func (h *InstanceHandler) UpdateFederationStatus(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}
	fedID, err := pathID(r, "fid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid federation ID")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.instanceService.UpdateFederationStatus(r.Context(), actorID, instanceID, fedID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown federation status")
		case errors.Is(err, service.ErrFederationNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Federation link not found")
		default:
			h.writeInstanceError(w, err, "update federation status failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, link)
}

func (h *InstanceHandler) RemoveFederation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	instanceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}
	fedID, err := pathID(r, "fid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid federation ID")
		return
	}

	if err := h.instanceService.RemoveFederation(r.Context(), actorID, instanceID, fedID); err != nil {
		if errors.Is(err, service.ErrFederationNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Federation link not found")
		} else {
			h.writeInstanceError(w, err, "remove federation failed")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeInstanceError handles the errors shared by every admin-scoped endpoint.
func (h *InstanceHandler) writeInstanceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Instance not found")
	case errors.Is(err, service.ErrNotInstanceAdmin):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the instance admin can perform this action")
	case errors.Is(err, service.ErrInvalidRules):
		writeError(w, http.StatusBadRequest, "INVALID_RULES", "Invalid instance configuration")
	default:
		logrus.WithError(err).Error(logMsg)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
