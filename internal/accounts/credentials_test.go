package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt.MinCost keeps these tests fast; production uses the
// configured cost.
const testCost = bcrypt.MinCost

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("supersecret", testCost)
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("supersecret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("notthesame")))

	// Per-digest salts: the same password never hashes the same twice.
	again, err := HashPassword("supersecret", testCost)
	require.NoError(t, err)
	assert.NotEqual(t, digest, again)
}

func TestNewAuthToken(t *testing.T) {
	token, err := NewAuthToken()
	require.NoError(t, err)
	assert.Len(t, token, authTokenBytes*2)

	other, err := NewAuthToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestIssueCredentials(t *testing.T) {
	a := &Account{Username: "fred_jones", Password: "supersecret"}
	require.Empty(t, a.AuthToken)

	require.NoError(t, IssueCredentials(a, testCost))

	assert.NotEmpty(t, a.PasswordDigest)
	assert.NotEmpty(t, a.AuthToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordDigest), []byte("supersecret")))
}

func TestIssueCredentials_TokenIssuedOnlyOnce(t *testing.T) {
	a := &Account{Username: "fred_jones", Password: "supersecret"}
	require.NoError(t, IssueCredentials(a, testCost))
	token := a.AuthToken

	// A later password change re-digests but keeps the token.
	a.Password = "newpassword"
	require.NoError(t, IssueCredentials(a, testCost))

	assert.Equal(t, token, a.AuthToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordDigest), []byte("newpassword")))
}

func TestIssueCredentials_NoPassword(t *testing.T) {
	a := &Account{Username: "fred_jones"}
	require.NoError(t, IssueCredentials(a, testCost))

	assert.Empty(t, a.PasswordDigest)
	assert.NotEmpty(t, a.AuthToken)
}
