package repository

import (
	"context"
	"errors"

	"github.com/loganomaly/rcaservice/internal/models"
	"gorm.io/gorm"
)

// ErrNoResults is returned when a query matches no RCA records.
var ErrNoResults = errors.New("no rca results found")

// RcaStore is the read-side storage contract for RCA records. The gorm
// implementation below is the production one; tests substitute a fake.
type RcaStore interface {
	// FetchAll returns all records ordered by logdate descending.
	FetchAll(ctx context.Context) ([]models.RcaResult, error)
	// FetchLatest returns the single record with the maximum logdate,
	// or ErrNoResults when the table is empty.
	FetchLatest(ctx context.Context) (*models.RcaResult, error)
}

type RcaRepository struct {
	db *gorm.DB
}

func NewRcaRepository(db *gorm.DB) *RcaRepository {
	return &RcaRepository{db: db}
}

func (r *RcaRepository) FetchAll(ctx context.Context) ([]models.RcaResult, error) {
	var results []models.RcaResult
	if err := r.db.WithContext(ctx).Order("logdate DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *RcaRepository) FetchLatest(ctx context.Context) (*models.RcaResult, error) {
	var result models.RcaResult
	err := r.db.WithContext(ctx).Order("logdate DESC").First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoResults
		}
		return nil, err
	}
	return &result, nil
}
