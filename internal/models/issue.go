package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue records a synchronization failure so an operator can follow up.
type Issue struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	Subject     string         `json:"subject" gorm:"index;not null"`
	Operation   IssueOperation `json:"operation" gorm:"not null"`
	Code        string         `json:"code" gorm:"not null"`
	Severity    IssueSeverity  `json:"severity" gorm:"not null"`
	Explanation string         `json:"explanation" gorm:"not null"`
	IsResolved  bool           `json:"is_resolved" gorm:"default:false"`
	ResolvedAt  *time.Time     `json:"resolved_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type IssueOperation string

const (
	IssueOperationItemSync    IssueOperation = "ITEM_SYNC"
	IssueOperationSale        IssueOperation = "SALE"
	IssueOperationWebhook     IssueOperation = "WEBHOOK_REGISTRATION"
	IssueOperationSalesReplay IssueOperation = "SALES_REPLAY"
)

type IssueSeverity string

const (
	IssueSeverityLow      IssueSeverity = "LOW"
	IssueSeverityMedium   IssueSeverity = "MEDIUM"
	IssueSeverityHigh     IssueSeverity = "HIGH"
	IssueSeverityCritical IssueSeverity = "CRITICAL"
)

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
