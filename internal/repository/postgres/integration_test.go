package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-hq/commune/internal/database"
	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

// These tests exercise the real schema and need a throwaway database:
//
//	TEST_DATABASE_URL=postgres://... go test ./internal/repository/postgres/
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Applying the schema twice must be a no-op, not an error.
	require.NoError(t, database.Migrate(ctx, pool))
	require.NoError(t, database.Migrate(ctx, pool))

	return pool
}

func seedTestUser(t *testing.T, repo *UserRepo) *domain.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	now := time.Now()
	user := &domain.User{
		Username:     "user_" + suffix,
		Email:        fmt.Sprintf("user_%s@example.com", suffix),
		PasswordHash: "salt:hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserCascadeDelete(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	userRepo := NewUserRepo(pool)
	profileRepo := NewProfileRepo(pool)
	skillRepo := NewSkillRepo(pool)
	serviceRepo := NewServiceRepo(pool)
	postRepo := NewPostRepo(pool)

	owner := seedTestUser(t, userRepo)
	other := seedTestUser(t, userRepo)

	exp := &domain.WorkExperience{
		UserID: owner.ID, Title: "Engineer", Company: "Acme",
		StartDate: time.Now().AddDate(-1, 0, 0), Current: true,
	}
	require.NoError(t, profileRepo.CreateExperience(ctx, exp))

	edu := &domain.Education{
		UserID: owner.ID, School: "ITU",
		StartDate: time.Now().AddDate(-3, 0, 0), Current: true,
	}
	require.NoError(t, profileRepo.CreateEducation(ctx, edu))

	skill, err := skillRepo.GetOrCreate(ctx, "skill_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, skillRepo.AddUserSkill(ctx, owner.ID, skill.ID))

	svc := &domain.Service{UserID: owner.ID, Title: "Logo design", CreatedAt: time.Now()}
	require.NoError(t, serviceRepo.Create(ctx, svc))

	post := &domain.Post{UserID: owner.ID, Content: "hello", CreatedAt: time.Now()}
	require.NoError(t, postRepo.Create(ctx, post))

	comment := &domain.Comment{PostID: post.ID, UserID: owner.ID, Content: "hi", CreatedAt: time.Now()}
	require.NoError(t, postRepo.CreateComment(ctx, comment))

	reaction := &domain.Reaction{PostID: post.ID, UserID: other.ID, Type: domain.ReactionLike, CreatedAt: time.Now()}
	require.NoError(t, postRepo.SetReaction(ctx, reaction))

	require.NoError(t, userRepo.Delete(ctx, owner.ID))

	gotExp, err := profileRepo.GetExperience(ctx, exp.ID)
	require.NoError(t, err)
	assert.Nil(t, gotExp)

	gotEdu, err := profileRepo.GetEducation(ctx, edu.ID)
	require.NoError(t, err)
	assert.Nil(t, gotEdu)

	userSkills, err := skillRepo.ListUserSkills(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, userSkills)

	gotSvc, err := serviceRepo.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Nil(t, gotSvc)

	gotPost, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, gotPost)

	gotComment, err := postRepo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, gotComment)

	// The other user's reaction went down with the post.
	gotReaction, err := postRepo.GetReaction(ctx, post.ID, other.ID)
	require.NoError(t, err)
	assert.Nil(t, gotReaction)
}

func TestDuplicateUsernameConflict(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	userRepo := NewUserRepo(pool)

	first := seedTestUser(t, userRepo)

	now := time.Now()
	dup := &domain.User{
		Username:     first.Username,
		Email:        "different_" + first.Email,
		PasswordHash: "salt:hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := userRepo.Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCategoryDeleteDetachesServices(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	userRepo := NewUserRepo(pool)
	categoryRepo := NewCategoryRepo(pool)
	serviceRepo := NewServiceRepo(pool)

	owner := seedTestUser(t, userRepo)

	cat := &domain.Category{Name: "cat_" + uuid.NewString()[:8]}
	require.NoError(t, categoryRepo.Create(ctx, cat))

	svc := &domain.Service{
		UserID: owner.ID, CategoryID: &cat.ID,
		Title: "Logo design", CreatedAt: time.Now(),
	}
	require.NoError(t, serviceRepo.Create(ctx, svc))

	require.NoError(t, categoryRepo.Delete(ctx, cat.ID))

	survivor, err := serviceRepo.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, survivor)
	assert.Nil(t, survivor.CategoryID)
}

func TestReactionUpsert(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	userRepo := NewUserRepo(pool)
	postRepo := NewPostRepo(pool)

	author := seedTestUser(t, userRepo)
	reactor := seedTestUser(t, userRepo)

	post := &domain.Post{UserID: author.ID, Content: "hello", CreatedAt: time.Now()}
	require.NoError(t, postRepo.Create(ctx, post))

	first := &domain.Reaction{PostID: post.ID, UserID: reactor.ID, Type: domain.ReactionLike, CreatedAt: time.Now()}
	require.NoError(t, postRepo.SetReaction(ctx, first))

	second := &domain.Reaction{PostID: post.ID, UserID: reactor.ID, Type: domain.ReactionCelebrate, CreatedAt: time.Now()}
	require.NoError(t, postRepo.SetReaction(ctx, second))

	reactions, err := postRepo.ListReactions(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, domain.ReactionCelebrate, reactions[0].Type)
}

func TestFederationPairUnique(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	userRepo := NewUserRepo(pool)
	instanceRepo := NewInstanceRepo(pool)

	admin := seedTestUser(t, userRepo)

	makeInstance := func() *domain.Instance {
		inst := &domain.Instance{
			Name:                  "inst_" + uuid.NewString()[:8],
			Domain:                uuid.NewString()[:8] + ".example",
			AdminUserID:           admin.ID,
			ModerationRules:       domain.ModerationRules{Version: 1},
			RequiredProfileFields: domain.RequiredProfileFields{Version: 1},
			FederationRules:       domain.FederationRules{Version: 1},
			CreatedAt:             time.Now(),
		}
		require.NoError(t, instanceRepo.Create(ctx, inst))
		return inst
	}

	a := makeInstance()
	b := makeInstance()

	fed := &domain.FederatedInstance{
		InstanceID: a.ID, FedWithInstanceID: b.ID,
		Status: domain.FederationPending, CreatedAt: time.Now(),
	}
	require.NoError(t, instanceRepo.CreateFederation(ctx, fed))

	dup := &domain.FederatedInstance{
		InstanceID: a.ID, FedWithInstanceID: b.ID,
		Status: domain.FederationPending, CreatedAt: time.Now(),
	}
	assert.ErrorIs(t, instanceRepo.CreateFederation(ctx, dup), repository.ErrConflict)

	// The reverse direction is a distinct edge.
	reverse := &domain.FederatedInstance{
		InstanceID: b.ID, FedWithInstanceID: a.ID,
		Status: domain.FederationPending, CreatedAt: time.Now(),
	}
	assert.NoError(t, instanceRepo.CreateFederation(ctx, reverse))
}

func TestSessionDeleteExpired(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	userRepo := NewUserRepo(pool)
	sessionRepo := NewSessionRepo(pool)

	user := seedTestUser(t, userRepo)

	fresh := &domain.Session{ID: uuid.NewString(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessionRepo.Create(ctx, fresh))

	stale := &domain.Session{ID: uuid.NewString(), UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, sessionRepo.Create(ctx, stale))

	n, err := sessionRepo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err := sessionRepo.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = sessionRepo.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
