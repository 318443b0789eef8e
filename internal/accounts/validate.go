package accounts

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const maxUsernameLength = 40

// minPasswordLength is the shortest accepted password. The failure
// message is phrased in terms of the highest rejected length.
const minPasswordLength = 7

// reservedUsernames are rejected by a case-sensitive literal match,
// independently of the charset rule.
var reservedUsernames = []string{"admin", "goodbrews", "guest"}

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.'-]+$`)

	// emailPattern requires a non-empty local part, a single "@", and a
	// non-empty domain token. A dotted domain is deliberately not
	// required: "user@localhost" is accepted.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// Messages shared with collaborators that must report the same
// failures, e.g. the storage layer translating a unique-index
// violation lost to a concurrent write.
const (
	MsgUsernameTaken = "has already been taken"
	MsgEmailInUse    = "is already in use"
)

// Lookup is the read-only uniqueness capability the validator
// consumes. Implementations compare case-insensitively and exclude the
// account with excludeID when it is non-empty, so an update does not
// collide with itself. Production backs this with an indexed database
// query; tests use an in-memory fake.
//
// The in-memory check is advisory: a race between two concurrent
// candidates can only be caught by the storage layer's own unique
// constraints.
type Lookup interface {
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}

// Options describe the operation being validated. PasswordChanged must
// be set explicitly by the caller; the validator has no dirty
// tracking, and the password and confirmation rules only apply when
// the password is being set.
type Options struct {
	IsUpdate        bool
	PasswordChanged bool
}

// Validate checks a candidate against the account rule set and returns
// every violated rule as field-scoped failures. Rules are evaluated
// independently; nothing short-circuits, so a candidate can fail
// several rules at once. The candidate is never mutated.
//
// A non-nil error reports a lookup fault, not invalid input: retrying
// with corrected fields cannot fix it.
func Validate(ctx context.Context, candidate *Account, lookup Lookup, opts Options) (*Failures, error) {
	f := NewFailures()

	username := candidate.Username
	if username == "" {
		f.Add("username", "can't be blank")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		f.Add("username", fmt.Sprintf("is too long (maximum is %d characters)", maxUsernameLength))
	}
	for _, reserved := range reservedUsernames {
		if username == reserved {
			f.Add("username", "is reserved")
		}
	}
	if username != "" && !usernamePattern.MatchString(username) {
		f.Add("username", "is invalid")
	}

	email := candidate.Email
	if email == "" {
		f.Add("email", "can't be blank")
	}
	if email != "" && !emailPattern.MatchString(email) {
		f.Add("email", "is invalid")
	}

	// Password rules apply on creation and whenever the password is
	// being changed; an update that leaves the password alone needs no
	// confirmation.
	if !opts.IsUpdate || opts.PasswordChanged {
		if utf8.RuneCountInString(candidate.Password) < minPasswordLength {
			f.Add("password", fmt.Sprintf("must be longer than %d characters", minPasswordLength-1))
		}
		if candidate.PasswordConfirmation == "" {
			f.Add("password_confirmation", "can't be blank")
		}
		if candidate.PasswordConfirmation != candidate.Password {
			f.Add("password_confirmation", "doesn't match Password")
		}
	}

	excludeID := ""
	if opts.IsUpdate {
		excludeID = candidate.ID
	}
	if username != "" {
		taken, err := lookup.UsernameTaken(ctx, username, excludeID)
		if err != nil {
			return nil, fmt.Errorf("username lookup: %w", err)
		}
		if taken {
			f.Add("username", MsgUsernameTaken)
		}
	}
	if email != "" {
		inUse, err := lookup.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return nil, fmt.Errorf("email lookup: %w", err)
		}
		if inUse {
			f.Add("email", MsgEmailInUse)
		}
	}

	return f, nil
}
