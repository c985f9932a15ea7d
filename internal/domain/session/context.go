// Package session provides the per-request session context. The context
// carries the active user id, the guest flag, and the storage backend for
// that mode; every accessor receives it explicitly instead of reading
// ambient process-wide state.
package session

import (
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

// Context holds the resolved session for one request.
type Context struct {
	UserID string
	Email  string
	Guest  bool
	Admin  bool
	Store  store.Store
}

// NewContext builds a session context with the backend already selected
// for the session's mode.
func NewContext(userID, email string, guest bool, st store.Store) *Context {
	return &Context{
		UserID: userID,
		Email:  email,
		Guest:  guest,
		Store:  st,
	}
}

// IsGuest returns true for local-only guest sessions.
func (ctx *Context) IsGuest() bool {
	return ctx.Guest
}

// HasUser reports whether a user is active. Accessors called without one
// fail soft to empty results.
func (ctx *Context) HasUser() bool {
	return ctx != nil && ctx.UserID != ""
}
