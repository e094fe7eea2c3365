// Package identity resolves the currently signed-in user for mutating
// operations. Token verification itself belongs to the hosting application;
// the core only needs a user identifier or an unauthenticated failure.
package identity

import (
	"context"

	"github.com/quillbooks/backend/internal/domain/errors"
)

// Provider exposes the current signed-in user's identifier.
type Provider interface {
	// CurrentUserID returns the signed-in user's id, or an
	// UNAUTHENTICATED error when nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)
}

// Static is a fixed-user provider for tests and the CLI.
type Static struct {
	UserID string
}

// CurrentUserID implements the Provider interface
func (s Static) CurrentUserID(ctx context.Context) (string, error) {
	if s.UserID == "" {
		return "", errors.NewUnauthenticatedError("no signed-in user")
	}
	return s.UserID, nil
}
