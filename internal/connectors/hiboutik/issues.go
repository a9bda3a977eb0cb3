package hiboutik

import (
	"context"
	"errors"

	"opossum/internal/models"
	"opossum/internal/services/hiboutik"
	"opossum/internal/validation"
)

// IssueRecorder keeps track of failures so operators can follow up.
type IssueRecorder interface {
	Record(ctx context.Context, issue *models.Issue) error
	ResolveSubject(ctx context.Context, subject string, operation models.IssueOperation) error
}

func classify(err error) (string, models.IssueSeverity) {
	var rights *hiboutik.InsufficientRightsError
	var apiErr *hiboutik.APIError
	switch {
	case errors.As(err, &rights):
		return "INSUFFICIENT_RIGHTS", models.IssueSeverityCritical
	case errors.Is(err, ErrUnknownProduct):
		return "UNKNOWN_PRODUCT", models.IssueSeverityHigh
	case errors.Is(err, hiboutik.ErrProductNotFound):
		return "PRODUCT_NOT_FOUND", models.IssueSeverityHigh
	case errors.Is(err, ErrInvalidExternalID):
		return "INVALID_HIBOUTIK_ID", models.IssueSeverityHigh
	case errors.Is(err, validation.ErrInvalidItem):
		return "INVALID_ITEM", models.IssueSeverityMedium
	case errors.Is(err, ErrInvalidPayload):
		return "INVALID_PAYLOAD", models.IssueSeverityMedium
	case errors.As(err, &apiErr):
		return "API_ERROR", models.IssueSeverityMedium
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT", models.IssueSeverityLow
	default:
		return "SYNC_FAILED", models.IssueSeverityMedium
	}
}

func (e *Engine) recordIssue(ctx context.Context, subject string, operation models.IssueOperation, err error) {
	if e.issues == nil || err == nil {
		return
	}
	code, severity := classify(err)
	issue := &models.Issue{
		Subject:     subject,
		Operation:   operation,
		Code:        code,
		Severity:    severity,
		Explanation: err.Error(),
	}
	if recErr := e.issues.Record(context.WithoutCancel(ctx), issue); recErr != nil {
		e.logger.Error("Failed to record issue for %s: %v", subject, recErr)
	}
}

func (e *Engine) resolveIssues(ctx context.Context, subject string, operation models.IssueOperation) {
	if e.issues == nil {
		return
	}
	if err := e.issues.ResolveSubject(ctx, subject, operation); err != nil {
		e.logger.Error("Failed to resolve issues for %s: %v", subject, err)
	}
}
