package accounts

import (
	"context"
	"time"

	"tunebox/internal/domain"

	"gorm.io/gorm"
)

// UserRepositoryInterface — only the methods the accounts service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	DB() *gorm.DB // for transactions spanning users and sessions
}

// SessionRepositoryInterface — storage for refresh-token sessions
type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Session, error)
	CountLiveByUser(ctx context.Context, userID int64, now time.Time) (int64, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
