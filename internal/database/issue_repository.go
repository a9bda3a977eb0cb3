package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"opossum/internal/models"
)

// IssueRepository records sync failures for operators.
type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *Database) *IssueRepository {
	return &IssueRepository{db: db.DB}
}

// Record stores a new issue unless an unresolved one exists for the same
// subject, operation and code, in which case its explanation is refreshed.
func (r *IssueRepository) Record(ctx context.Context, issue *models.Issue) error {
	var existing models.Issue
	err := r.db.WithContext(ctx).
		Where("subject = ? AND operation = ? AND code = ? AND is_resolved = ?", issue.Subject, issue.Operation, issue.Code, false).
		First(&existing).Error
	if err == nil {
		existing.Explanation = issue.Explanation
		existing.Severity = issue.Severity
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update issue: %w", err)
		}
		*issue = existing
		return nil
	}
	if notFound(err) != models.ErrNotFound {
		return fmt.Errorf("failed to look up issue: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

type IssueFilter struct {
	Operation string
	Severity  string
	Resolved  *bool
	Page      int
	Limit     int
}

func (r *IssueRepository) List(ctx context.Context, filter IssueFilter) ([]models.Issue, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Issue{})

	if filter.Operation != "" {
		query = query.Where("operation = ?", filter.Operation)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Resolved != nil {
		query = query.Where("is_resolved = ?", *filter.Resolved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if filter.Limit > 0 {
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var issues []models.Issue
	if err := query.Order("created_at DESC").Find(&issues).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, total, nil
}

func (r *IssueRepository) Get(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := r.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &issue, nil
}

func (r *IssueRepository) Resolve(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	issue.IsResolved = true
	issue.ResolvedAt = &now
	if err := r.db.WithContext(ctx).Save(issue).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve issue: %w", err)
	}
	return issue, nil
}

// ResolveSubject marks every open issue of a subject and operation resolved.
func (r *IssueRepository) ResolveSubject(ctx context.Context, subject string, operation models.IssueOperation) error {
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("subject = ? AND operation = ? AND is_resolved = ?", subject, operation, false).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to resolve issues: %w", err)
	}
	return nil
}
