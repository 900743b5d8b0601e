package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-hq/commune/internal/domain"
)

func newProfileService() (*ProfileService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	return NewProfileService(userRepo, newFakeProfileRepo(), newFakeSkillRepo()), userRepo
}

func seedUser(t *testing.T, repo *fakeUserRepo, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestAddExperienceCurrentWithEndDate(t *testing.T) {
	svc, userRepo := newProfileService()
	user := seedUser(t, userRepo, "alice")
	ctx := context.Background()

	end := time.Now()
	_, err := svc.AddExperience(ctx, user.ID, ExperienceInput{
		Title:     "Engineer",
		Company:   "Acme",
		StartDate: end.AddDate(-1, 0, 0),
		EndDate:   &end,
		Current:   true,
	})
	assert.ErrorIs(t, err, ErrCurrentWithEndDate)

	// Without the end date the same entry is fine.
	exp, err := svc.AddExperience(ctx, user.ID, ExperienceInput{
		Title:     "Engineer",
		Company:   "Acme",
		StartDate: end.AddDate(-1, 0, 0),
		Current:   true,
	})
	require.NoError(t, err)
	assert.True(t, exp.Current)
	assert.Nil(t, exp.EndDate)
}

func TestUpdateExperienceOwnership(t *testing.T) {
	svc, userRepo := newProfileService()
	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	ctx := context.Background()

	exp, err := svc.AddExperience(ctx, alice.ID, ExperienceInput{
		Title:     "Engineer",
		Company:   "Acme",
		StartDate: time.Now().AddDate(-1, 0, 0),
		Current:   true,
	})
	require.NoError(t, err)

	_, err = svc.UpdateExperience(ctx, bob.ID, exp.ID, ExperienceInput{
		Title:     "CEO",
		Company:   "Acme",
		StartDate: exp.StartDate,
		Current:   true,
	})
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	err = svc.DeleteExperience(ctx, bob.ID, exp.ID)
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	_, err = svc.UpdateExperience(ctx, alice.ID, 9999, ExperienceInput{
		Title:     "CEO",
		Company:   "Acme",
		StartDate: exp.StartDate,
	})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestAddEducationCurrentWithEndDate(t *testing.T) {
	svc, userRepo := newProfileService()
	user := seedUser(t, userRepo, "alice")

	end := time.Now()
	_, err := svc.AddEducation(context.Background(), user.ID, EducationInput{
		School:    "ITU",
		StartDate: end.AddDate(-3, 0, 0),
		EndDate:   &end,
		Current:   true,
	})
	assert.ErrorIs(t, err, ErrCurrentWithEndDate)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	svc, userRepo := newProfileService()
	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	ctx := context.Background()

	name := "Mallory"
	_, err := svc.UpdateProfile(ctx, bob.ID, alice.ID, UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	updated, err := svc.UpdateProfile(ctx, alice.ID, alice.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Mallory", *updated.Name)
}

func TestAddSkillDeduplicates(t *testing.T) {
	svc, userRepo := newProfileService()
	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	ctx := context.Background()

	first, err := svc.AddSkill(ctx, alice.ID, "Go")
	require.NoError(t, err)

	// Same name resolves to the same global skill for another user.
	second, err := svc.AddSkill(ctx, bob.ID, "Go")
	require.NoError(t, err)
	assert.Equal(t, first.SkillID, second.SkillID)

	// Adding it twice to the same profile conflicts.
	_, err = svc.AddSkill(ctx, alice.ID, "Go")
	assert.ErrorIs(t, err, ErrSkillAlreadyAdded)
}

func TestEndorse(t *testing.T) {
	svc, userRepo := newProfileService()
	alice := seedUser(t, userRepo, "alice")
	ctx := context.Background()

	us, err := svc.AddSkill(ctx, alice.ID, "Go")
	require.NoError(t, err)

	count, err := svc.Endorse(ctx, alice.ID, us.SkillID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.Endorse(ctx, alice.ID, us.SkillID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = svc.Endorse(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, ErrSkillNotOnProfile)
}

func TestGetProfileMissingUser(t *testing.T) {
	svc, _ := newProfileService()

	_, err := svc.GetProfile(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
