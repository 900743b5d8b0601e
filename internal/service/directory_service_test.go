package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryService() (*DirectoryService, *fakeServiceRepo) {
	serviceRepo := newFakeServiceRepo()
	return NewDirectoryService(serviceRepo, newFakeCategoryRepo(serviceRepo)), serviceRepo
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _ := newDirectoryService()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Design"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Design"})
	assert.ErrorIs(t, err, ErrCategoryNameTaken)
}

func TestDeleteCategoryDetachesServices(t *testing.T) {
	svc, serviceRepo := newDirectoryService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Design"})
	require.NoError(t, err)

	created, err := svc.CreateService(ctx, 1, ServiceInput{
		CategoryID: &cat.ID,
		Title:      "Logo design",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))

	// The service survives with its category reference nulled.
	survivor, err := serviceRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, survivor)
	assert.Nil(t, survivor.CategoryID)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrCategoryNotFound)
}

func TestCreateServiceUnknownCategory(t *testing.T) {
	svc, _ := newDirectoryService()

	bogus := int64(9999)
	_, err := svc.CreateService(context.Background(), 1, ServiceInput{
		CategoryID: &bogus,
		Title:      "Logo design",
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestUpdateServiceOwnerOnly(t *testing.T) {
	svc, _ := newDirectoryService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, 1, ServiceInput{Title: "Logo design"})
	require.NoError(t, err)

	_, err = svc.UpdateService(ctx, 2, created.ID, ServiceInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, ErrNotServiceOwner)

	assert.ErrorIs(t, svc.DeleteService(ctx, 2, created.ID), ErrNotServiceOwner)

	updated, err := svc.UpdateService(ctx, 1, created.ID, ServiceInput{Title: "Brand design"})
	require.NoError(t, err)
	assert.Equal(t, "Brand design", updated.Title)

	require.NoError(t, svc.DeleteService(ctx, 1, created.ID))
	_, err = svc.GetService(ctx, created.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
