package repository

import (
	"context"
	"time"

	"tunebox/internal/domain"

	"gorm.io/gorm"
)

type TrackRepository struct {
	db *gorm.DB
}

func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

type trackModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name"`
	SpotifyURI string    `gorm:"column:spotify_uri;uniqueIndex"`
	FilePath   string    `gorm:"column:file_path"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (trackModel) TableName() string { return "tracks" }

func toDomainTrack(m trackModel) *domain.Track {
	return &domain.Track{
		ID:         m.ID,
		Name:       m.Name,
		SpotifyURI: m.SpotifyURI,
		FilePath:   m.FilePath,
		CreatedAt:  m.CreatedAt,
	}
}

func (r *TrackRepository) Create(ctx context.Context, t *domain.Track) error {
	m := trackModel{
		Name:       t.Name,
		SpotifyURI: t.SpotifyURI,
		FilePath:   t.FilePath,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if IsDuplicate(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	*t = *toDomainTrack(m)
	return nil
}

func (r *TrackRepository) GetBySpotifyURI(ctx context.Context, uri string) (*domain.Track, error) {
	var m trackModel
	tx := r.db.WithContext(ctx).Where("spotify_uri = ?", uri).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainTrack(m), nil
}

func (r *TrackRepository) GetByID(ctx context.Context, id int64) (*domain.Track, error) {
	var m trackModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainTrack(m), nil
}
