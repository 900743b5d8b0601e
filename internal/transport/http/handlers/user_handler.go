package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/service"
	"github.com/commune-hq/commune/internal/transport/http/middleware"
	"github.com/commune-hq/commune/pkg/validator"
)

type UserHandler struct {
	profileService *service.ProfileService
}

func NewUserHandler(profileService *service.ProfileService) *UserHandler {
	return &UserHandler{profileService: profileService}
}

// GetProfile is public: profiles are readable without a session.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			logrus.WithError(err).Error("get profile failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), actorID, userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotProfileOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only edit your own profile")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logrus.WithError(err).Error("update profile failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.profileService.DeleteUser(r.Context(), actorID, userID); err != nil {
		if errors.Is(err, service.ErrNotProfileOwner) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own account")
		} else {
			logrus.WithError(err).Error("delete user failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	exps, err := h.profileService.ListExperiences(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("list experiences failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if exps == nil {
		exps = []domain.WorkExperience{}
	}
	writeJSON(w, http.StatusOK, exps)
}

func (h *UserHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var input service.ExperienceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	exp, err := h.profileService.AddExperience(r.Context(), actorID, input)
	if err != nil {
		if errors.Is(err, service.ErrCurrentWithEndDate) {
			writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "A current position cannot have an end date")
		} else {
			logrus.WithError(err).Error("add experience failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, exp)
}

func (h *UserHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	expID, err := pathID(r, "eid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid experience ID")
		return
	}

	var input service.ExperienceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	exp, err := h.profileService.UpdateExperience(r.Context(), actorID, expID, input)
	if err != nil {
		writeProfileEntryError(w, err, "update experience")
		return
	}

	writeJSON(w, http.StatusOK, exp)
}

func (h *UserHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	expID, err := pathID(r, "eid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid experience ID")
		return
	}

	if err := h.profileService.DeleteExperience(r.Context(), actorID, expID); err != nil {
		writeProfileEntryError(w, err, "delete experience")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListEducations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	edus, err := h.profileService.ListEducations(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("list educations failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if edus == nil {
		edus = []domain.Education{}
	}
	writeJSON(w, http.StatusOK, edus)
}

func (h *UserHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var input service.EducationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	edu, err := h.profileService.AddEducation(r.Context(), actorID, input)
	if err != nil {
		if errors.Is(err, service.ErrCurrentWithEndDate) {
			writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "A current enrollment cannot have an end date")
		} else {
			logrus.WithError(err).Error("add education failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, edu)
}

func (h *UserHandler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	eduID, err := pathID(r, "eid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid education ID")
		return
	}

	var input service.EducationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	edu, err := h.profileService.UpdateEducation(r.Context(), actorID, eduID, input)
	if err != nil {
		writeProfileEntryError(w, err, "update education")
		return
	}

	writeJSON(w, http.StatusOK, edu)
}

func (h *UserHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	eduID, err := pathID(r, "eid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid education ID")
		return
	}

	if err := h.profileService.DeleteEducation(r.Context(), actorID, eduID); err != nil {
		writeProfileEntryError(w, err, "delete education")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.profileService.ListSkills(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list skills failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if skills == nil {
		skills = []domain.Skill{}
	}
	writeJSON(w, http.StatusOK, skills)
}

func (h *UserHandler) ListUserSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	skills, err := h.profileService.ListUserSkills(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("list user skills failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if skills == nil {
		skills = []domain.UserSkill{}
	}
	writeJSON(w, http.StatusOK, skills)
}

func (h *UserHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateSkill(body.Name); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	skill, err := h.profileService.AddSkill(r.Context(), actorID, body.Name)
	if err != nil {
		if errors.Is(err, service.ErrSkillAlreadyAdded) {
			writeError(w, http.StatusConflict, "SKILL_EXISTS", "Skill is already on your profile")
		} else {
			logrus.WithError(err).Error("add skill failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, skill)
}

func (h *UserHandler) Endorse(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}
	skillID, err := pathID(r, "sid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid skill ID")
		return
	}

	count, err := h.profileService.Endorse(r.Context(), userID, skillID)
	if err != nil {
		if errors.Is(err, service.ErrSkillNotOnProfile) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Skill is not on this profile")
		} else {
			logrus.WithError(err).Error("endorse failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"endorsements": count})
}

func (h *UserHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	skillID, err := pathID(r, "sid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid skill ID")
		return
	}

	if err := h.profileService.RemoveSkill(r.Context(), actorID, skillID); err != nil {
		logrus.WithError(err).Error("remove skill failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeProfileEntryError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Profile entry not found")
	case errors.Is(err, service.ErrNotProfileOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only edit your own profile entries")
	case errors.Is(err, service.ErrCurrentWithEndDate):
		writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "A current entry cannot have an end date")
	default:
		logrus.WithError(err).Errorf("%s failed", op)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
