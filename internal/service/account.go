// Package service contains the accounts business logic: registration,
// updates, login, and token authentication, orchestrated as an
// explicit two-phase sequence around persistence: validate the
// candidate, then issue credentials, then write.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/goodbrews/accounts/internal/accounts"
	"github.com/goodbrews/accounts/internal/auth"
	"github.com/goodbrews/accounts/internal/common"
	"github.com/goodbrews/accounts/internal/config"
	"github.com/goodbrews/accounts/internal/dbx"
	"github.com/goodbrews/accounts/internal/repositories/repomanager"
)

// dummyDigest keeps the bcrypt comparison cost constant when a login
// names an account that does not exist, so response timing does not
// leak account existence.
var dummyDigest = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AccountService provides account lifecycle operations:
// - Register: validate a candidate, issue credentials, create
// - Update: re-validate and persist changes, re-digesting on password change
// - Login: verify a password and mint an access token
// - AuthenticateToken: resolve an account from its opaque auth token
type AccountService struct {
	db                  *sql.DB
	repos               repomanager.RepositoryManager
	jwtSecret           []byte
	accessTokenValidity time.Duration
	bcryptCost          int
}

// NewAccountService constructs an AccountService using repositories
// and service config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                  db,
		repos:               m,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidity,
		bcryptCost:          cfg.BcryptCost,
	}
}

// RegisterInput carries a candidate account's field values.
type RegisterInput struct {
	Username             string
	Email                string
	Name                 string
	Password             string
	PasswordConfirmation string
}

// UpdateInput carries the full desired field state for an existing
// account. PasswordChanged must be set explicitly when the password is
// being changed; the password fields are ignored otherwise.
type UpdateInput struct {
	ID                   string
	Username             string
	Email                string
	Name                 string
	Password             string
	PasswordConfirmation string
	PasswordChanged      bool
}

// Register validates a candidate, issues its credentials, and persists
// it. A rejected candidate returns *accounts.ValidationError carrying
// every violated rule; any other error is a system fault. The stored
// account has its auth token populated exactly here, never before.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*accounts.Account, error) {
	a := &accounts.Account{
		Username:             in.Username,
		Email:                in.Email,
		Name:                 in.Name,
		Password:             in.Password,
		PasswordConfirmation: in.PasswordConfirmation,
	}
	accounts.Normalize(a)

	repo := s.repos.Accounts(s.db)
	failures, err := accounts.Validate(ctx, a, repo, accounts.Options{})
	if err != nil {
		return nil, fmt.Errorf("validating account: %w", err)
	}
	if !failures.Empty() {
		return nil, &accounts.ValidationError{Failures: failures}
	}

	if err := accounts.IssueCredentials(a, s.bcryptCost); err != nil {
		return nil, err
	}

	a.ID = uuid.NewString()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	if err := repo.Create(ctx, a); err != nil {
		// A duplicate that won a race arrives as the same field
		// failure the advisory check would have reported.
		var vErr *accounts.ValidationError
		if errors.As(err, &vErr) {
			return nil, vErr
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	a.Password, a.PasswordConfirmation = "", ""
	return a, nil
}

// Update re-validates the account with the new field values and
// persists them. The password is re-digested only when
// in.PasswordChanged is set; the auth token is never touched. The read
// and write share a transaction so the uniqueness lookup sees a
// consistent snapshot.
func (s *AccountService) Update(ctx context.Context, in UpdateInput) (*accounts.Account, error) {
	var updated *accounts.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Accounts(tx)

		a, err := repo.GetByID(ctx, in.ID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrNotFound
			}
			return fmt.Errorf("loading account: %w", err)
		}

		a.Username, a.Email, a.Name = in.Username, in.Email, in.Name
		if in.PasswordChanged {
			a.Password = in.Password
			a.PasswordConfirmation = in.PasswordConfirmation
		}
		accounts.Normalize(a)

		failures, err := accounts.Validate(ctx, a, repo, accounts.Options{
			IsUpdate:        true,
			PasswordChanged: in.PasswordChanged,
		})
		if err != nil {
			return fmt.Errorf("validating account: %w", err)
		}
		if !failures.Empty() {
			return &accounts.ValidationError{Failures: failures}
		}

		if in.PasswordChanged {
			if err := accounts.IssueCredentials(a, s.bcryptCost); err != nil {
				return err
			}
		}
		a.UpdatedAt = time.Now().UTC()

		if err := repo.Update(ctx, a); err != nil {
			var vErr *accounts.ValidationError
			if errors.As(err, &vErr) {
				return vErr
			}
			return fmt.Errorf("updating account: %w", err)
		}

		a.Password, a.PasswordConfirmation = "", ""
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Login verifies the password for the named account and, on success,
// returns a signed access token plus the account. The bcrypt
// comparison always runs, against a dummy digest when the account is
// absent.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *accounts.Account, error) {
	repo := s.repos.Accounts(s.db)

	a, err := repo.GetByUsername(ctx, username)

	digest := dummyDigest
	if err == nil {
		digest = []byte(a.PasswordDigest)
	}
	compareErr := bcrypt.CompareHashAndPassword(digest, []byte(password))

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}
	if compareErr != nil {
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(a.ID, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, a, nil
}

// AuthenticateToken resolves an account from its opaque auth token.
func (s *AccountService) AuthenticateToken(ctx context.Context, token string) (*accounts.Account, error) {
	a, err := s.repos.Accounts(s.db).GetByAuthToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	return a, nil
}

// Find returns the account whose username matches, folding case. The
// lookup accepts the account's slug source, so profile URLs resolve by
// username rather than internal ID.
func (s *AccountService) Find(ctx context.Context, username string) (*accounts.Account, error) {
	a, err := s.repos.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}
	return a, nil
}
