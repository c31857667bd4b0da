package repository

import (
	"context"
	"errors"
	"time"

	"tunebox/internal/domain"

	"gorm.io/gorm"
)

// SessionRepository stores refresh-token sessions. All expiry values are
// normalized to UTC on the way in and out.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string { return "sessions" }

func toDomainSession(m sessionModel) *domain.Session {
	return &domain.Session{
		Token:     m.Token,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt.UTC(),
		CreatedAt: m.CreatedAt,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m := sessionModel{
		Token:     s.Token,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt.UTC(),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if IsDuplicate(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	s.CreatedAt = m.CreatedAt
	return nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.Session, error) {
	var m sessionModel
	tx := r.db.WithContext(ctx).Where("token = ?", tokenStr).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainSession(m), nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	var models []sessionModel
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	sessions := make([]domain.Session, 0, len(models))
	for _, m := range models {
		sessions = append(sessions, *toDomainSession(m))
	}
	return sessions, nil
}

// CountLiveByUser counts the user's sessions whose expiry has not passed.
func (r *SessionRepository) CountLiveByUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("user_id = ? AND expires_at > ?", userID, now.UTC()).
		Count(&count)
	return count, tx.Error
}

// Delete removes a session by token. Deleting an absent token is not an
// error.
func (r *SessionRepository) Delete(ctx context.Context, tokenStr string) error {
	tx := r.db.WithContext(ctx).Where("token = ?", tokenStr).Delete(&sessionModel{})
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return tx.Error
	}
	return nil
}

// DeleteByUser removes every session the user owns and reports how many
// rows went away.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&sessionModel{})
	return tx.RowsAffected, tx.Error
}

// DeleteExpired purges sessions whose expiry has passed. Used by the
// cleanup job; the request path only deletes lazily on detection.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&sessionModel{})
	return tx.RowsAffected, tx.Error
}
