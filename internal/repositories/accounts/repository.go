// Package accounts provides persistence for account records, including
// the case-insensitive existence lookups the validator consumes.
package accounts

import (
	"context"

	domain "github.com/goodbrews/accounts/internal/accounts"
)

// Repository abstracts account storage. It doubles as the validator's
// uniqueness lookup: UsernameTaken and EmailTaken satisfy
// domain.Lookup, comparing case-insensitively and excluding excludeID
// when non-empty.
type Repository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByAuthToken(ctx context.Context, token string) (*domain.Account, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}
