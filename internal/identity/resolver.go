// Package identity reconciles per-provider user keys into one team-member
// identity. GitHub records are keyed by login; editor and assistant records
// are keyed by email. An operator-maintained mapping table links the two.
package identity

import (
	"github.com/DevPulseHQ/devpulse-web/internal/db"
)

// Resolver answers lookups over a snapshot of the identity mapping table.
// It is built per aggregation pass: mapping changes take effect on the next
// pass, already-stored aggregates are never re-keyed.
type Resolver struct {
	emailByLogin map[string]string
	loginByEmail map[string]string
}

// NewResolver builds a resolver from stored mappings. Later rows win when
// two emails claim the same login, matching the table's upsert semantics.
func NewResolver(mappings []db.IdentityMapping) *Resolver {
	r := &Resolver{
		emailByLogin: make(map[string]string, len(mappings)),
		loginByEmail: make(map[string]string, len(mappings)),
	}
	for _, m := range mappings {
		r.emailByLogin[m.GitHubUsername] = m.Email
		r.loginByEmail[m.Email] = m.GitHubUsername
	}
	return r
}

// EmailForLogin resolves a GitHub login to the mapped email.
// ok is false for unmapped logins; callers must surface those rows flagged
// as unmapped rather than merging or dropping them.
func (r *Resolver) EmailForLogin(login string) (string, bool) {
	email, ok := r.emailByLogin[login]
	return email, ok
}

// LoginForEmail resolves an email to the mapped GitHub login.
func (r *Resolver) LoginForEmail(email string) (string, bool) {
	login, ok := r.loginByEmail[email]
	return login, ok
}
