package repository

import (
	"context"
	"fmt"

	"github.com/timmy/modguard/internal/domain"
	"gorm.io/gorm"
)

// SubmissionRepository handles submission history persistence.
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SubmissionRepository: repository instance bound to db.
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create appends a submission record. The generated id is written back.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - s: submission to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// ListRecent returns up to limit submissions, newest first. Ties on timestamp
// are broken by descending id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of rows to return.
// Returns:
//   - []domain.Submission: submissions ordered newest first.
//   - error: non-nil if the query fails.
func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	var submissions []domain.Submission
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
