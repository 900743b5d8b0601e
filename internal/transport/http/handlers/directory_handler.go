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

type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.directoryService.ListCategories(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list categories failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *DirectoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required")
		return
	}

	cat, err := h.directoryService.CreateCategory(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNameTaken) {
			writeError(w, http.StatusConflict, "NAME_TAKEN", "Category name already exists")
		} else {
			logrus.WithError(err).Error("create category failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

func (h *DirectoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	if err := h.directoryService.DeleteCategory(r.Context(), catID); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		} else {
			logrus.WithError(err).Error("delete category failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListServices is public; an optional ?category= query filters by category.
func (h *DirectoryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid category filter")
			return
		}
		categoryID = &id
	}

	svcs, err := h.directoryService.ListServices(r.Context(), categoryID)
	if err != nil {
		logrus.WithError(err).Error("list services failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if svcs == nil {
		svcs = []domain.Service{}
	}
	writeJSON(w, http.StatusOK, svcs)
}

func (h *DirectoryHandler) GetService(w http.ResponseWriter, r *http.Request) {
	svcID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}

	svc, err := h.directoryService.GetService(r.Context(), svcID)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Service not found")
		} else {
			logrus.WithError(err).Error("get service failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

func (h *DirectoryHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var input service.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateService(input.Title); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	svc, err := h.directoryService.CreateService(r.Context(), actorID, input)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, "UNKNOWN_CATEGORY", "Referenced category does not exist")
		} else {
			logrus.WithError(err).Error("create service failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, svc)
}

func (h *DirectoryHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	svcID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}

	var input service.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateService(input.Title); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	svc, err := h.directoryService.UpdateService(r.Context(), actorID, svcID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Service not found")
		case errors.Is(err, service.ErrNotServiceOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only edit your own services")
		case errors.Is(err, service.ErrUnknownCategory):
			writeError(w, http.StatusBadRequest, "UNKNOWN_CATEGORY", "Referenced category does not exist")
		default:
			logrus.WithError(err).Error("update service failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

func (h *DirectoryHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	svcID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return
	}

	if err := h.directoryService.DeleteService(r.Context(), actorID, svcID); err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Service not found")
		case errors.Is(err, service.ErrNotServiceOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own services")
		default:
			logrus.WithError(err).Error("delete service failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
