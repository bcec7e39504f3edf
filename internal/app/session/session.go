// Package session carries the explicit per-request session context. There is
// no ambient auth state: handlers that need the caller's identity receive a
// *Session built once at the HTTP boundary.
package session

// Session is the authenticated caller's context. A nil *Session means an
// anonymous visitor, which landing and status endpoints accept.
type Session struct {
	Token     string
	UserID    string
	Affiliate bool
	Admin     bool
}
