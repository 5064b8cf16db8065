// Package identity decides who the caller is and whether they hold the
// admin role. Authentication is delegated to Firebase; authorization is a
// single rule, an exact match against the configured admin email.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthenticated reports a missing or invalid credential.
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// Session is the resolved caller state attached to a request.
type Session struct {
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// Anonymous is the session for requests without a credential.
func Anonymous() Session { return Session{} }

// Verifier checks an ID token and returns the subject it belongs to.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (uid, email string, err error)
}

// Gate turns verified tokens into sessions. The admin decision is an
// exact, case-sensitive comparison with the configured email; when no
// admin email is configured nobody is admin.
type Gate struct {
	verifier   Verifier
	adminEmail string
}

func NewGate(verifier Verifier, adminEmail string) *Gate {
	return &Gate{verifier: verifier, adminEmail: adminEmail}
}

// Authenticate resolves the session for an ID token. Any verification
// failure yields ErrUnauthenticated; the caller is never admitted on a
// doubtful credential.
func (g *Gate) Authenticate(ctx context.Context, idToken string) (Session, error) {
	if idToken == "" {
		return Session{}, ErrUnauthenticated
	}
	uid, email, err := g.verifier.Verify(ctx, idToken)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return Session{
		UserID:  uid,
		Email:   email,
		IsAdmin: g.adminEmail != "" && email == g.adminEmail,
	}, nil
}

// StaticVerifier accepts every token as a fixed subject. It backs the
// NO_AUTH development mode and tests.
type StaticVerifier struct {
	UID   string
	Email string
}

func (v StaticVerifier) Verify(ctx context.Context, idToken string) (string, string, error) {
	return v.UID, v.Email, nil
}
