package accounts

import "strings"

// Slug returns the URL-safe form of the username, used as the
// account's external identifier instead of its ID. The username is
// lowercased, runs of characters outside [a-z0-9_] are collapsed into
// single hyphens, and leading/trailing hyphens are dropped.
//
// For example, a username of "Fred Jones!" yields "fred-jones".
func (a *Account) Slug() string {
	return parameterize(a.Username)
}

func parameterize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	// pendingSep starts true so leading separators are swallowed.
	pendingSep := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingSep = false
		default:
			pendingSep = true
		}
	}

	return b.String()
}
