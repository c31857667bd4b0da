package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"tunebox/internal/domain"
	"tunebox/internal/pkg/password"
	"tunebox/internal/pkg/token"
	"tunebox/internal/repository"

	"gorm.io/gorm"
)

type tokenCodec interface {
	EncodeAccess(username string) (string, error)
	EncodeRefresh(userID int64) (string, time.Time, error)
	DecodeAccess(tokenStr string) (*token.AccessClaims, error)
	DecodeRefresh(tokenStr string) (*token.RefreshClaims, error)
}

// TokenPair is issued on register and login: a persisted refresh token
// plus a stateless access token.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// Service contains all business logic for accounts and sessions.
type Service struct {
	users    UserRepositoryInterface
	sessions SessionRepositoryInterface
	codec    tokenCodec
}

func NewService(users UserRepositoryInterface, sessions SessionRepositoryInterface, codec tokenCodec) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// rows created inside the register transaction; column names must match
// the repository models.
type userRow struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRow) TableName() string { return "users" }

type sessionRow struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    int64     `gorm:"column:user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRow) TableName() string { return "sessions" }

// Register creates the user and their first session atomically: either
// both rows persist or neither does.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, *TokenPair, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, nil, err
	} else if taken {
		return nil, nil, ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, nil, err
	} else if taken {
		return nil, nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, nil, err
	}

	var (
		user *domain.User
		pair *TokenPair
	)
	err = s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := userRow{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		}
		if err := tx.Create(&row).Error; err != nil {
			if repository.IsDuplicate(err) {
				// lost a race with a concurrent registration
				return ErrConflict
			}
			return err
		}

		refresh, expiresAt, err := s.codec.EncodeRefresh(row.ID)
		if err != nil {
			return err
		}
		if err := tx.Create(&sessionRow{
			Token:     refresh,
			UserID:    row.ID,
			ExpiresAt: expiresAt,
		}).Error; err != nil {
			if repository.IsDuplicate(err) {
				return ErrConflict
			}
			return err
		}

		access, err := s.codec.EncodeAccess(row.Username)
		if err != nil {
			return err
		}

		user = &domain.User{ID: row.ID, Username: row.Username, Email: row.Email}
		pair = &TokenPair{Refresh: refresh, Access: access}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and opens a new session. Concurrent logins
// by the same user coexist as independent sessions.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	refresh, expiresAt, err := s.codec.EncodeRefresh(user.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Create(ctx, &domain.Session{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrConflict
		}
		return nil, nil, err
	}

	access, err := s.codec.EncodeAccess(user.Username)
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	return user, &TokenPair{Refresh: refresh, Access: access}, nil
}

// Refresh exchanges a live refresh token for a fresh access token. The
// signature and expiry checks are pure and run before any store lookup;
// an expired token deletes its session row on the spot (lazy GC). The
// user is re-derived from the session row, never from the token payload.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	if token.Expired(claims, time.Now()) {
		if err := s.sessions.Delete(ctx, refreshToken); err != nil {
			return "", err
		}
		return "", token.ErrExpired
	}

	sess, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// logged out before natural expiry
			return "", ErrSessionRevoked
		}
		return "", err
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSessionRevoked
		}
		return "", err
	}

	return s.codec.EncodeAccess(user.Username)
}

// CurrentUser resolves the identity behind an access token. A user with
// zero live sessions is treated as logged out even if the access token
// itself has not expired yet.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.DecodeAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if token.Expired(claims, time.Now()) {
		return nil, token.ErrExpired
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	live, err := s.sessions.CountLiveByUser(ctx, user.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if live == 0 {
		return nil, ErrSessionRevoked
	}

	user.PasswordHash = ""
	return user, nil
}

// Logout revokes every session the user owns.
func (s *Service) Logout(ctx context.Context, user *domain.User) error {
	deleted, err := s.sessions.DeleteByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSessionRevoked
	}
	return nil
}
