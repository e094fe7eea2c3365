package company

import (
	"context"
	"time"
)

// CancelFunc stops a watch. Safe to call more than once. Cancellation is
// synchronous from the caller's perspective, but a notification already
// scheduled may still be delivered afterwards; consumers guard with a
// session token before applying it.
type CancelFunc func()

// UpdateInfoRequest is a partial update of a company record. Zero-valued
// fields are left untouched.
type UpdateInfoRequest struct {
	Name           string   `json:"name,omitempty"`
	BankAccountIDs []string `json:"bankAccountIds,omitempty"`
}

// Repository defines the interface for company data operations
type Repository interface {
	// Create a new company record
	CreateCompany(ctx context.Context, c *Company) (*Company, error)

	// Get a company by ID
	GetCompany(ctx context.Context, companyID string) (*Company, error)

	// List companies owned by a user
	ListCompanies(ctx context.Context, userID string) ([]*Company, error)

	// Update a company's display info and bank links
	UpdateCompanyInfo(ctx context.Context, companyID string, req *UpdateInfoRequest) (*Company, error)

	// Record when a company was last opened
	TouchLastAccessed(ctx context.Context, companyID string, at time.Time) error

	// Get the full data document for a company
	GetData(ctx context.Context, companyID string) (Data, error)

	// Replace the full data document for a company
	PutData(ctx context.Context, data Data) error

	// Watch a company's data document for remote changes
	WatchData(ctx context.Context, companyID string, onChange func(Data), onError func(error)) (CancelFunc, error)

	// Watch the set of companies owned by a user
	WatchCompanies(ctx context.Context, userID string, onChange func([]*Company), onError func(error)) (CancelFunc, error)
}
