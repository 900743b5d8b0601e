package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNotProfileOwner    = errors.New("only the profile owner can perform this action")
	ErrCurrentWithEndDate = errors.New("a current position cannot have an end date")
	ErrEntryNotFound      = errors.New("profile entry not found")
	ErrSkillAlreadyAdded  = errors.New("skill already on profile")
	ErrSkillNotOnProfile  = errors.New("skill is not on this profile")
)

type ProfileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	skillRepo   repository.SkillRepository
}

func NewProfileService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, skillRepo repository.SkillRepository) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
	}
}

// Profile is the composite a profile page renders.
type Profile struct {
	User        *domain.User            `json:"user"`
	Experiences []domain.WorkExperience `json:"experiences"`
	Educations  []domain.Education      `json:"educations"`
	Skills      []domain.UserSkill      `json:"skills"`
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	exps, err := s.profileRepo.ListExperiences(ctx, userID)
	if err != nil {
		return nil, err
	}
	edus, err := s.profileRepo.ListEducations(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills, err := s.skillRepo.ListUserSkills(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Experiences: exps, Educations: edus, Skills: skills}, nil
}

func (s *ProfileService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Headline *string `json:"headline"`
	ImageURL *string `json:"image_url"`
}

func (s *ProfileService) UpdateProfile(ctx context.Context, actorID, userID int64, input UpdateProfileInput) (*domain.User, error) {
	if actorID != userID {
		return nil, ErrNotProfileOwner
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Name != nil {
		user.Name = input.Name
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Headline != nil {
		user.Headline = input.Headline
	}
	if input.ImageURL != nil {
		user.ImageURL = input.ImageURL
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// DeleteUser removes the account. Owned rows (experiences, educations,
// skills, services, posts, comments, reactions) go with it via the schema's
// cascades.
func (s *ProfileService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID != userID {
		return ErrNotProfileOwner
	}
	return s.userRepo.Delete(ctx, userID)
}

type ExperienceInput struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Current     bool       `json:"current"`
}

func (s *ProfileService) AddExperience(ctx context.Context, actorID int64, input ExperienceInput) (*domain.WorkExperience, error) {
	if input.Current && input.EndDate != nil {
		return nil, ErrCurrentWithEndDate
	}

	exp := &domain.WorkExperience{
		UserID:      actorID,
		Title:       input.Title,
		Company:     input.Company,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Current:     input.Current,
	}
	if err := s.profileRepo.CreateExperience(ctx, exp); err != nil {
		return nil, fmt.Errorf("creating experience: %w", err)
	}
	return exp, nil
}

func (s *ProfileService) UpdateExperience(ctx context.Context, actorID, expID int64, input ExperienceInput) (*domain.WorkExperience, error) {
	if input.Current && input.EndDate != nil {
		return nil, ErrCurrentWithEndDate
	}

	exp, err := s.profileRepo.GetExperience(ctx, expID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrEntryNotFound
	}
	if exp.UserID != actorID {
		return nil, ErrNotProfileOwner
	}

	exp.Title = input.Title
	exp.Company = input.Company
	exp.Description = input.Description
	exp.StartDate = input.StartDate
	exp.EndDate = input.EndDate
	exp.Current = input.Current

	if err := s.profileRepo.UpdateExperience(ctx, exp); err != nil {
		return nil, fmt.Errorf("updating experience: %w", err)
	}
	return exp, nil
}

func (s *ProfileService) DeleteExperience(ctx context.Context, actorID, expID int64) error {
	exp, err := s.profileRepo.GetExperience(ctx, expID)
	if err != nil {
		return err
	}
	if exp == nil {
		return ErrEntryNotFound
	}
	if exp.UserID != actorID {
		return ErrNotProfileOwner
	}
	return s.profileRepo.DeleteExperience(ctx, expID)
}

type EducationInput struct {
	School    string     `json:"school"`
	Degree    *string    `json:"degree"`
	Field     *string    `json:"field"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Current   bool       `json:"current"`
}

func (s *ProfileService) AddEducation(ctx context.Context, actorID int64, input EducationInput) (*domain.Education, error) {
	if input.Current && input.EndDate != nil {
		return nil, ErrCurrentWithEndDate
	}

	edu := &domain.Education{
		UserID:    actorID,
		School:    input.School,
		Degree:    input.Degree,
		Field:     input.Field,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Current:   input.Current,
	}
	if err := s.profileRepo.CreateEducation(ctx, edu); err != nil {
		return nil, fmt.Errorf("creating education: %w", err)
	}
	return edu, nil
}

func (s *ProfileService) UpdateEducation(ctx context.Context, actorID, eduID int64, input EducationInput) (*domain.Education, error) {
	if input.Current && input.EndDate != nil {
		return nil, ErrCurrentWithEndDate
	}

	edu, err := s.profileRepo.GetEducation(ctx, eduID)
	if err != nil {
		return nil, err
	}
	if edu == nil {
		return nil, ErrEntryNotFound
	}
	if edu.UserID != actorID {
		return nil, ErrNotProfileOwner
	}

	edu.School = input.School
	edu.Degree = input.Degree
	edu.Field = input.Field
	edu.StartDate = input.StartDate
	edu.EndDate = input.EndDate
	edu.Current = input.Current

	if err := s.profileRepo.UpdateEducation(ctx, edu); err != nil {
		return nil, fmt.Errorf("updating education: %w", err)
	}
	return edu, nil
}

func (s *ProfileService) DeleteEducation(ctx context.Context, actorID, eduID int64) error {
	edu, err := s.profileRepo.GetEducation(ctx, eduID)
	if err != nil {
		return err
	}
	if edu == nil {
		return ErrEntryNotFound
	}
	if edu.UserID != actorID {
		return ErrNotProfileOwner
	}
	return s.profileRepo.DeleteEducation(ctx, eduID)
}

// AddSkill resolves the skill by name (creating the global record if it is
// new) and attaches it to the actor's profile.
func (s *ProfileService) AddSkill(ctx context.Context, actorID int64, name string) (*domain.UserSkill, error) {
	skill, err := s.skillRepo.GetOrCreate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving skill: %w", err)
	}

	if err := s.skillRepo.AddUserSkill(ctx, actorID, skill.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSkillAlreadyAdded
		}
		return nil, fmt.Errorf("adding skill: %w", err)
	}

	return &domain.UserSkill{UserID: actorID, SkillID: skill.ID, SkillName: skill.Name}, nil
}

// Endorse bumps the endorsement counter on someone's skill. Endorsing your
// own skill is allowed, the excerpted product never forbade it.
func (s *ProfileService) Endorse(ctx context.Context, userID, skillID int64) (int, error) {
	count, found, err := s.skillRepo.Endorse(ctx, userID, skillID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrSkillNotOnProfile
	}
	return count, nil
}

func (s *ProfileService) RemoveSkill(ctx context.Context, actorID, skillID int64) error {
	return s.skillRepo.RemoveUserSkill(ctx, actorID, skillID)
}

func (s *ProfileService) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	return s.skillRepo.List(ctx)
}

func (s *ProfileService) ListUserSkills(ctx context.Context, userID int64) ([]domain.UserSkill, error) {
	return s.skillRepo.ListUserSkills(ctx, userID)
}

func (s *ProfileService) ListExperiences(ctx context.Context, userID int64) ([]domain.WorkExperience, error) {
	return s.profileRepo.ListExperiences(ctx, userID)
}

func (s *ProfileService) ListEducations(ctx context.Context, userID int64) ([]domain.Education, error) {
	return s.profileRepo.ListEducations(ctx, userID)
}
