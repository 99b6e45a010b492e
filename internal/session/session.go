package session

import "context"

// Role is the closed set of portal roles. Anything the store hands back that
// is not one of these parses to RoleUnauthenticated.
type Role string

const (
	RoleUnauthenticated Role = ""
	RolePatient         Role = "patient"
	RoleLoggedPatient   Role = "loggedPatient"
	RoleAdmin           Role = "admin"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePatient, RoleLoggedPatient, RoleAdmin:
		return Role(s)
	default:
		return RoleUnauthenticated
	}
}

// Session is an immutable snapshot of the ambient role/token pair. The store
// may change between reads, so components re-read at the point of use rather
// than caching a snapshot across suspension points.
type Session struct {
	Role  Role
	Token string
}

// HasToken reports whether an auth token is present. Presence is the only
// inspection the portal ever performs on a token.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Anonymous is the session of a visitor with no ambient state.
func Anonymous() Session {
	return Session{Role: RoleUnauthenticated}
}

// Store is the ambient session store contract. Current is the read path the
// core depends on; Put and Clear exist for login/logout flows, which live
// outside the portal core.
type Store interface {
	Current(ctx context.Context, sessionID string) (Session, error)
	Put(ctx context.Context, sessionID string, sess Session) error
	Clear(ctx context.Context, sessionID string) error
}

// TokenSource yields the current auth token, re-read from ambient state on
// every call. The bool is false when no token is present.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, bool)
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func(ctx context.Context) (string, bool)

func (f TokenFunc) CurrentToken(ctx context.Context) (string, bool) {
	return f(ctx)
}

// StaticTokens is a TokenSource over a fixed token, for flows where the
// session snapshot has already been taken.
func StaticTokens(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, bool) {
		return token, token != ""
	})
}
