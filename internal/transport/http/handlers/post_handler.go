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

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Feed is public. Pagination via ?before=<post id>&limit=<n>.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	var before *int64
	if raw := r.URL.Query().Get("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid before cursor")
			return
		}
		before = &id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.postService.Feed(r.Context(), before, limit)
	if err != nil {
		logrus.WithError(err).Error("feed failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	posts, err := h.postService.ListByUser(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("list user posts failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			logrus.WithError(err).Error("get post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var input service.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePost(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.postService.Create(r.Context(), actorID, input)
	if err != nil {
		logrus.WithError(err).Error("create post failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	middleware.PostsCreated.Inc()
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var input service.UpdatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), actorID, postID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only edit your own posts")
		default:
			logrus.WithError(err).Error("update post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), actorID, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own posts")
		default:
			logrus.WithError(err).Error("delete post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	comments, err := h.postService.ListComments(r.Context(), postID)
	if err != nil {
		logrus.WithError(err).Error("list comments failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateComment(body.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comment, err := h.postService.AddComment(r.Context(), actorID, postID, body.Content)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			logrus.WithError(err).Error("add comment failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	commentID, err := pathID(r, "cid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid comment ID")
		return
	}

	if err := h.postService.DeleteComment(r.Context(), actorID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found")
		case errors.Is(err, service.ErrNotCommentOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You cannot delete this comment")
		default:
			logrus.WithError(err).Error("delete comment failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) ListReactions(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	reactions, err := h.postService.ListReactions(r.Context(), postID)
	if err != nil {
		logrus.WithError(err).Error("list reactions failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if reactions == nil {
		reactions = []domain.Reaction{}
	}
	writeJSON(w, http.StatusOK, reactions)
}

// React sets (or overwrites) the caller's reaction on a post.
func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var body struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	reaction, err := h.postService.React(r.Context(), actorID, postID, body.Type)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReaction):
			writeError(w, http.StatusBadRequest, "INVALID_REACTION", "Unknown reaction type")
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		default:
			logrus.WithError(err).Error("react failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	middleware.ReactionsSet.Inc()
	writeJSON(w, http.StatusOK, reaction)
}

func (h *PostHandler) Unreact(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.postService.Unreact(r.Context(), actorID, postID); err != nil {
		logrus.WithError(err).Error("unreact failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
