package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/storage/s3"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

type catalogServiceMocks struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	users      *MockUserRepository
	cache      *MockProductDetailCache
	images     *MockImageStorage
}

func newCatalogService() (*CatalogService, *catalogServiceMocks) {
	m := &catalogServiceMocks{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		users:      new(MockUserRepository),
		cache:      new(MockProductDetailCache),
		images:     new(MockImageStorage),
	}
	svc := NewCatalogService(m.products, m.categories, m.users, m.cache, m.images, logger.NoOp{})
	return svc, m
}

func reviewedProduct() *entity.Product {
	p := testProduct("prod-1", 250, 10)
	p.Reviews = []entity.Review{
		{ID: "rev-1", UserID: "user-1", UserName: "Asha Rao", Rating: 4},
		{ID: "rev-2", UserID: "user-2", UserName: "Vikram Shah", Rating: 5},
	}
	p.RecalculateRating()
	return p
}

func TestCatalogService_GetProduct_HidesInactive(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	p := testProduct("prod-1", 250, 10)
	p.IsActive = false
	m.products.On("GetByID", ctx, "prod-1").Return(p, nil)

	_, err := svc.GetProduct(ctx, "prod-1")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	m.products.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestCatalogService_GetProduct_BumpsViews(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", 250, 10), nil)
	m.products.On("IncrementViews", ctx, "prod-1").Return(nil)

	p, err := svc.GetProduct(ctx, "prod-1")

	assert.NoError(t, err)
	assert.Equal(t, "prod-1", p.ID)
	m.products.AssertCalled(t, "IncrementViews", ctx, "prod-1")
}

func TestCatalogService_AddReview_ResolvesUserName(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	reviewer := entity.NewUser("Neha Kulkarni", "neha@example.com", "hash", "")
	reviewer.ID = "user-3"
	m.users.On("GetByID", ctx, "user-3").Return(reviewer, nil)
	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	p, err := svc.AddReview(ctx, "prod-1", "user-3", 3, "sturdy but heavy", nil)

	assert.NoError(t, err)
	assert.Len(t, p.Reviews, 3)
	assert.Equal(t, "Neha Kulkarni", p.Reviews[2].UserName)
	// (4+5+3)/3 = 4.0
	assert.Equal(t, 4.0, p.Ratings.Average)
	assert.Equal(t, 3, p.Ratings.Count)
}

func TestCatalogService_AddReview_OncePerUser(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	reviewer := entity.NewUser("Asha Rao", "asha@example.com", "hash", "")
	reviewer.ID = "user-1"
	m.users.On("GetByID", ctx, "user-1").Return(reviewer, nil)
	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)

	_, err := svc.AddReview(ctx, "prod-1", "user-1", 5, "second try", nil)

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	m.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_AddReview_UploadsImages(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	reviewer := entity.NewUser("Neha Kulkarni", "neha@example.com", "hash", "")
	reviewer.ID = "user-3"
	m.users.On("GetByID", ctx, "user-3").Return(reviewer, nil)
	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)
	m.images.On("Upload", ctx, "unboxing.jpg", mock.Anything, "reviews").
		Return(&s3.UploadedFile{Key: "reviews/abc.jpg", URL: "https://cdn/reviews/abc.jpg"}, nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	p, err := svc.AddReview(ctx, "prod-1", "user-3", 4, "as pictured",
		[]ImageFile{{Name: "unboxing.jpg", Data: []byte("jpeg")}})

	assert.NoError(t, err)
	added := p.ReviewByUser("user-3")
	assert.NotNil(t, added)
	assert.Len(t, added.Images, 1)
	assert.Equal(t, "reviews/abc.jpg", added.Images[0].PublicID)
}

func TestCatalogService_AddReview_PersistFailureCleansUpImages(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	reviewer := entity.NewUser("Neha Kulkarni", "neha@example.com", "hash", "")
	reviewer.ID = "user-3"
	m.users.On("GetByID", ctx, "user-3").Return(reviewer, nil)
	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)
	m.images.On("Upload", ctx, "unboxing.jpg", mock.Anything, "reviews").
		Return(&s3.UploadedFile{Key: "reviews/abc.jpg", URL: "https://cdn/reviews/abc.jpg"}, nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).
		Return(errors.New("write failed"))
	m.images.On("DeleteMany", mock.Anything, []string{"reviews/abc.jpg"}).Return(nil)

	_, err := svc.AddReview(ctx, "prod-1", "user-3", 4, "as pictured",
		[]ImageFile{{Name: "unboxing.jpg", Data: []byte("jpeg")}})

	assert.Error(t, err)
	m.images.AssertCalled(t, "DeleteMany", mock.Anything, []string{"reviews/abc.jpg"})
}

func TestCatalogService_UpdateReview_OwnerOnly(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)

	_, err := svc.UpdateReview(ctx, "prod-1", "rev-1", "user-2", 1, "")

	assert.ErrorIs(t, err, ErrForbidden)
	m.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateReview_RecomputesAverage(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	p, err := svc.UpdateReview(ctx, "prod-1", "rev-1", "user-1", 2, "broke after a month")

	assert.NoError(t, err)
	// (2+5)/2 = 3.5
	assert.Equal(t, 3.5, p.Ratings.Average)
}

func TestCatalogService_DeleteReview_AdminOverride(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	p, err := svc.DeleteReview(ctx, "prod-1", "rev-1", "admin-1", true)

	assert.NoError(t, err)
	assert.Len(t, p.Reviews, 1)
	assert.Equal(t, 5.0, p.Ratings.Average)
	assert.Equal(t, 1, p.Ratings.Count)
}

func TestCatalogService_DeleteReview_RemovesStoredImages(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	p := reviewedProduct()
	p.Reviews[0].Images = []entity.Image{{PublicID: "reviews/abc.jpg"}}
	m.products.On("GetByID", ctx, "prod-1").Return(p, nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	m.images.On("DeleteMany", mock.Anything, []string{"reviews/abc.jpg"}).Return(nil)

	_, err := svc.DeleteReview(ctx, "prod-1", "rev-1", "user-1", false)

	assert.NoError(t, err)
	m.images.AssertCalled(t, "DeleteMany", mock.Anything, []string{"reviews/abc.jpg"})
}

func TestCatalogService_DeleteReview_StrangerRejected(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(reviewedProduct(), nil)

	_, err := svc.DeleteReview(ctx, "prod-1", "rev-1", "user-9", false)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCatalogService_CreateProduct_RollsBackUploadsOnFailure(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.categories.On("GetByID", ctx, "cat-1").Return(&entity.Category{ID: "cat-1"}, nil)
	m.images.On("Upload", ctx, "tray.jpg", mock.Anything, "products").
		Return(&s3.UploadedFile{Key: "products/abc.jpg", URL: "https://cdn/products/abc.jpg"}, nil)
	m.products.On("Create", ctx, mock.AnythingOfType("*entity.Product")).
		Return("", errors.New("write failed"))
	m.images.On("DeleteMany", mock.Anything, []string{"products/abc.jpg"}).Return(nil)

	_, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:       "Steel Serving Tray",
		Price:      250,
		CategoryID: "cat-1",
	}, []ImageFile{{Name: "tray.jpg", Data: []byte("jpeg")}})

	assert.Error(t, err)
	m.images.AssertCalled(t, "DeleteMany", mock.Anything, []string{"products/abc.jpg"})
}

func TestCatalogService_CreateProduct_SlugFromName(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.categories.On("GetByID", ctx, "cat-1").Return(&entity.Category{ID: "cat-1"}, nil)
	m.products.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return("prod-1", nil)

	p, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:       "Steel Serving Tray (Large)",
		Price:      250,
		CategoryID: "cat-1",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "steel-serving-tray-large", p.Slug)
	assert.True(t, p.IsActive)
}

func TestCatalogService_UpdateProduct_NameChangeRegeneratesSlug(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", 250, 10), nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	m.cache.On("Delete", mock.Anything, "prod-1").Return(nil)

	name := "Copper Water Jug"
	p, err := svc.UpdateProduct(ctx, "prod-1", UpdateProductInput{Name: &name}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "copper-water-jug", p.Slug)
	m.cache.AssertCalled(t, "Delete", mock.Anything, "prod-1")
}

func TestCatalogService_DeleteProductImage_UnknownKey(t *testing.T) {
	svc, m := newCatalogService()
	ctx := context.Background()

	m.products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", 250, 10), nil)

	_, err := svc.DeleteProductImage(ctx, "prod-1", "products/missing.jpg")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	m.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
