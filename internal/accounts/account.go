// Package accounts implements the account domain: the Account model,
// validation of candidate records against the identity rule set, and
// credential issuance (password digests and auth tokens). It performs
// no I/O of its own; uniqueness checks go through a caller-supplied
// read-only lookup.
package accounts

import (
	"strings"
	"time"
)

// adminUsername is the one account treated as an administrator.
const adminUsername = "davidcelis"

// Account represents a registered account, or a candidate for one.
//
// Password and PasswordConfirmation are write-only candidate fields:
// they are read during validation and credential issuance and must
// never be persisted. PasswordDigest and AuthToken are derived by
// IssueCredentials before the record is stored.
type Account struct {
	ID       string
	Username string
	Email    string
	Name     string

	Password             string
	PasswordConfirmation string

	PasswordDigest string
	AuthToken      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims surrounding whitespace from the identity fields so
// that length, format, and uniqueness rules see the stored form.
// Callers should normalize a candidate before validating it.
func Normalize(a *Account) {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)
	a.Name = strings.TrimSpace(a.Name)
}

// IsAdmin reports whether the account is the administrator account.
// Administrator status is a fixed property of one username, not a role
// system.
func (a *Account) IsAdmin() bool {
	return a.Username == adminUsername
}
