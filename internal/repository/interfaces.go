package repository

import (
	"context"
	"time"

	"github.com/commune-hq/commune/internal/domain"
)

// Get* methods return (nil, nil) when no row matches.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

type ProfileRepository interface {
	CreateExperience(ctx context.Context, exp *domain.WorkExperience) error
	GetExperience(ctx context.Context, id int64) (*domain.WorkExperience, error)
	ListExperiences(ctx context.Context, userID int64) ([]domain.WorkExperience, error)
	UpdateExperience(ctx context.Context, exp *domain.WorkExperience) error
	DeleteExperience(ctx context.Context, id int64) error

	CreateEducation(ctx context.Context, edu *domain.Education) error
	GetEducation(ctx context.Context, id int64) (*domain.Education, error)
	ListEducations(ctx context.Context, userID int64) ([]domain.Education, error)
	UpdateEducation(ctx context.Context, edu *domain.Education) error
	DeleteEducation(ctx context.Context, id int64) error
}

type SkillRepository interface {
	// GetOrCreate resolves a skill by name, creating it if missing.
	GetOrCreate(ctx context.Context, name string) (*domain.Skill, error)
	List(ctx context.Context) ([]domain.Skill, error)
	AddUserSkill(ctx context.Context, userID, skillID int64) error
	ListUserSkills(ctx context.Context, userID int64) ([]domain.UserSkill, error)
	// Endorse atomically increments the endorsement counter and returns the
	// new value, or (0, nil) if no such user/skill pair exists.
	Endorse(ctx context.Context, userID, skillID int64) (int, bool, error)
	RemoveUserSkill(ctx context.Context, userID, skillID int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, cat *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	// Delete nulls category references on services in the same transaction
	// before removing the category row.
	Delete(ctx context.Context, id int64) error
}

type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context, categoryID *int64) ([]domain.Service, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Service, error)
	Update(ctx context.Context, svc *domain.Service) error
	Delete(ctx context.Context, id int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, before *int64, limit int) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, c *domain.Comment) error
	GetComment(ctx context.Context, id int64) (*domain.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	// SetReaction upserts atomically on the (post, user) unique pair: a
	// second reaction type overwrites, never duplicates.
	SetReaction(ctx context.Context, reaction *domain.Reaction) error
	GetReaction(ctx context.Context, postID, userID int64) (*domain.Reaction, error)
	ListReactions(ctx context.Context, postID int64) ([]domain.Reaction, error)
	DeleteReaction(ctx context.Context, postID, userID int64) error
}

type InstanceRepository interface {
	Create(ctx context.Context, inst *domain.Instance) error
	GetByID(ctx context.Context, id int64) (*domain.Instance, error)
	GetByDomain(ctx context.Context, dom string) (*domain.Instance, error)
	List(ctx context.Context) ([]domain.Instance, error)
	UpdateSettings(ctx context.Context, inst *domain.Instance) error

	CreateFederation(ctx context.Context, fed *domain.FederatedInstance) error
	GetFederation(ctx context.Context, id int64) (*domain.FederatedInstance, error)
	GetFederationByPair(ctx context.Context, instanceID, peerID int64) (*domain.FederatedInstance, error)
	ListFederation(ctx context.Context, instanceID int64) ([]domain.FederatedInstance, error)
	UpdateFederationStatus(ctx context.Context, id int64, status string) error
	DeleteFederation(ctx context.Context, id int64) error
}

type ActivityRepository interface {
	Append(ctx context.Context, act *domain.Activity) error
	ListByInstance(ctx context.Context, instanceID int64, limit int) ([]domain.Activity, error)
}

type SessionRepository interface {
	Create(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
