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
	ErrServiceNotFound   = errors.New("service not found")
	ErrNotServiceOwner   = errors.New("only the service owner can perform this action")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrUnknownCategory   = errors.New("referenced category does not exist")
)

// DirectoryService covers the services directory: categories and the
// service listings users offer.
type DirectoryService struct {
	serviceRepo  repository.ServiceRepository
	categoryRepo repository.CategoryRepository
}

func NewDirectoryService(serviceRepo repository.ServiceRepository, categoryRepo repository.CategoryRepository) *DirectoryService {
	return &DirectoryService{
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
	}
}

type CreateCategoryInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (s *DirectoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	cat := &domain.Category{Name: input.Name, Color: input.Color}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return cat, nil
}

func (s *DirectoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory removes the category. Services referencing it are detached,
// never deleted.
func (s *DirectoryService) DeleteCategory(ctx context.Context, id int64) error {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrCategoryNotFound
	}
	return s.categoryRepo.Delete(ctx, id)
}

type ServiceInput struct {
	CategoryID  *int64  `json:"category_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
}

func (s *DirectoryService) CreateService(ctx context.Context, actorID int64, input ServiceInput) (*domain.Service, error) {
	if input.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrUnknownCategory
		}
	}

	svc := &domain.Service{
		UserID:      actorID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		CreatedAt:   time.Now(),
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("creating service: %w", err)
	}
	return svc, nil
}

func (s *DirectoryService) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (s *DirectoryService) ListServices(ctx context.Context, categoryID *int64) ([]domain.Service, error) {
	return s.serviceRepo.List(ctx, categoryID)
}

func (s *DirectoryService) ListServicesByUser(ctx context.Context, userID int64) ([]domain.Service, error) {
	return s.serviceRepo.ListByUser(ctx, userID)
}

func (s *DirectoryService) UpdateService(ctx context.Context, actorID, serviceID int64, input ServiceInput) (*domain.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if svc.UserID != actorID {
		return nil, ErrNotServiceOwner
	}

	if input.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrUnknownCategory
		}
	}

	svc.CategoryID = input.CategoryID
	svc.Title = input.Title
	svc.Description = input.Description
	svc.Price = input.Price

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("updating service: %w", err)
	}
	return svc, nil
}

func (s *DirectoryService) DeleteService(ctx context.Context, actorID, serviceID int64) error {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return ErrServiceNotFound
	}
	if svc.UserID != actorID {
		return ErrNotServiceOwner
	}
	return s.serviceRepo.Delete(ctx, serviceID)
}
