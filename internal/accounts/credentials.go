package accounts

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// authTokenBytes is the entropy of a generated auth token. The encoded
// token is twice as many hex characters.
const authTokenBytes = 32

// HashPassword digests a password with bcrypt at the given cost, or
// bcrypt.DefaultCost when cost is zero. bcrypt salts every digest, so
// the same password on two accounts produces two different digests.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// NewAuthToken generates a random opaque token used to authenticate
// requests without a password.
func NewAuthToken() (string, error) {
	b := make([]byte, authTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating auth token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IssueCredentials populates the derived credential fields on a
// validated candidate: the password digest whenever a password is
// being set, and the auth token exactly once, at first creation. The
// token is never regenerated for an account that already has one, and
// no other field is touched.
//
// Errors come from the cryptographic primitives and are fatal; they
// are not validation failures.
func IssueCredentials(a *Account, bcryptCost int) error {
	if a.Password != "" {
		digest, err := HashPassword(a.Password, bcryptCost)
		if err != nil {
			return err
		}
		a.PasswordDigest = digest
	}
	if a.AuthToken == "" {
		token, err := NewAuthToken()
		if err != nil {
			return err
		}
		a.AuthToken = token
	}
	return nil
}
