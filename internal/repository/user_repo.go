package repository

import (
	"context"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (string, error)
	GetByID(ctx context.Context, userID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update replaces the whole document; the address book and reset-token
	// fields live inside the aggregate.
	Update(ctx context.Context, user *entity.User) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
}
