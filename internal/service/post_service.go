package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("only the post author can perform this action")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("only the comment author can perform this action")
	ErrInvalidReaction = errors.New("unknown reaction type")
)

var reactionTypes = map[string]bool{
	domain.ReactionLike:       true,
	domain.ReactionCelebrate:  true,
	domain.ReactionSupport:    true,
	domain.ReactionInsightful: true,
}

const defaultFeedLimit = 30

type PostService struct {
	postRepo repository.PostRepository
	domain   string
}

// NewPostService takes the instance domain used to mint activity ids for
// new posts.
func NewPostService(postRepo repository.PostRepository, instanceDomain string) *PostService {
	return &PostService{
		postRepo: postRepo,
		domain:   instanceDomain,
	}
}

type CreatePostInput struct {
	Content  string  `json:"content"`
	MediaURL *string `json:"media_url"`
}

type UpdatePostInput struct {
	Content  *string `json:"content"`
	MediaURL *string `json:"media_url"`
}

func (s *PostService) Create(ctx context.Context, actorID int64, input CreatePostInput) (*domain.Post, error) {
	activityID := fmt.Sprintf("https://%s/activities/%s", s.domain, uuid.NewString())

	post := &domain.Post{
		UserID:     actorID,
		Content:    input.Content,
		MediaURL:   input.MediaURL,
		ActivityID: &activityID,
		CreatedAt:  time.Now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) Feed(ctx context.Context, before *int64, limit int) ([]domain.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}
	return s.postRepo.List(ctx, before, limit)
}

func (s *PostService) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	return s.postRepo.ListByUser(ctx, userID)
}

func (s *PostService) Update(ctx context.Context, actorID, postID int64, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != actorID {
		return nil, ErrNotPostOwner
	}

	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.MediaURL != nil {
		post.MediaURL = input.MediaURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != actorID {
		return ErrNotPostOwner
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) AddComment(ctx context.Context, actorID, postID int64, content string) (*domain.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &domain.Comment{
		PostID:    postID,
		UserID:    actorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return comment, nil
}

func (s *PostService) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return s.postRepo.ListComments(ctx, postID)
}

// DeleteComment is allowed for the comment author and for the author of the
// post being commented on.
func (s *PostService) DeleteComment(ctx context.Context, actorID, commentID int64) error {
	comment, err := s.postRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}

	if comment.UserID != actorID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post == nil || post.UserID != actorID {
			return ErrNotCommentOwner
		}
	}
	return s.postRepo.DeleteComment(ctx, commentID)
}

// React sets the actor's reaction on a post. A second reaction from the
// same actor overwrites the first, the unique pair makes this atomic.
func (s *PostService) React(ctx context.Context, actorID, postID int64, reactionType string) (*domain.Reaction, error) {
	if !reactionTypes[reactionType] {
		return nil, ErrInvalidReaction
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	reaction := &domain.Reaction{
		PostID:    postID,
		UserID:    actorID,
		Type:      reactionType,
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.SetReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("setting reaction: %w", err)
	}
	return reaction, nil
}

func (s *PostService) ListReactions(ctx context.Context, postID int64) ([]domain.Reaction, error) {
	return s.postRepo.ListReactions(ctx, postID)
}

func (s *PostService) Unreact(ctx context.Context, actorID, postID int64) error {
	return s.postRepo.DeleteReaction(ctx, postID, actorID)
}
