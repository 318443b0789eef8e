package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	domain "github.com/goodbrews/accounts/internal/accounts"
	"github.com/goodbrews/accounts/internal/common"
	"github.com/goodbrews/accounts/internal/dbx"
)

// pgUniqueViolation is SQLSTATE 23505.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, email, name, password_digest, auth_token, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, account *domain.Account) error {
	query :=
		`INSERT INTO accounts (id, username, email, name, password_digest, auth_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.Name,
		account.PasswordDigest, account.AuthToken, account.CreatedAt, account.UpdatedAt)

	if err != nil {
		if vErr := uniqueViolation(err); vErr != nil {
			return vErr
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Update persists the mutable fields. The auth token is deliberately
// not in the column list: it is issued once at creation and never
// rewritten.
func (r *PostgresRepository) Update(ctx context.Context, account *domain.Account) error {
	query :=
		`UPDATE accounts
		 SET username = $2, email = $3, name = $4, password_digest = $5, updated_at = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.Name,
		account.PasswordDigest, account.UpdatedAt)

	if err != nil {
		if vErr := uniqueViolation(err); vErr != nil {
			return vErr
		}
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername folds case: usernames are unique case-insensitively,
// so the stored casing must not matter for lookups.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByAuthToken(ctx context.Context, token string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE auth_token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM accounts
		   WHERE LOWER(username) = LOWER($1) AND id::text <> $2
		 )`
	return r.exists(ctx, query, username, excludeID)
}

func (r *PostgresRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM accounts
		   WHERE LOWER(email) = LOWER($1) AND id::text <> $2
		 )`
	return r.exists(ctx, query, email, excludeID)
}

func (r *PostgresRepository) exists(ctx context.Context, query, value, excludeID string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, value, excludeID).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.Name,
		&account.PasswordDigest, &account.AuthToken, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// uniqueViolation translates a unique-index violation into the same
// field failure the advisory validation reports, so a duplicate that
// slipped past the in-memory check in a race surfaces to callers
// exactly like one caught up front. Returns nil for any other error.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}

	f := domain.NewFailures()
	switch pgErr.ConstraintName {
	case "accounts_username_idx":
		f.Add("username", domain.MsgUsernameTaken)
	case "accounts_email_idx":
		f.Add("email", domain.MsgEmailInUse)
	default:
		return nil
	}

	return &domain.ValidationError{Failures: f}
}
