// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// STATE
// =============================================================================

// State is the observable authentication state.
type State int

const (
	// StateLoading means the provider has not yet resolved the stored
	// session. UI surfaces show a spinner, never a login form, in this state.
	StateLoading State = iota

	// StateSignedIn means a user is authenticated.
	StateSignedIn

	// StateSignedOut means no user is authenticated.
	StateSignedOut
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSignedIn:
		return "signed-in"
	case StateSignedOut:
		return "signed-out"
	default:
		return "unknown"
	}
}

// =============================================================================
// USER
// =============================================================================

// User identifies an authenticated user. UID keys the per-user session
// storage, so two users on one machine never share chat history.
type User struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials indicates a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists indicates a registration collision.
	ErrUserExists = errors.New("user already exists")

	// ErrMFARequired indicates the account has TOTP enabled and no code
	// was supplied.
	ErrMFARequired = errors.New("TOTP code required")

	// ErrNotSignedIn indicates an operation that needs an authenticated user.
	ErrNotSignedIn = errors.New("not signed in")
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider is the identity contract the rest of the application consumes.
type Provider interface {
	// Current returns the current user and state. The User is only
	// meaningful when the state is StateSignedIn.
	Current() (User, State)

	// SignIn authenticates a user. totpCode may be empty for accounts
	// without TOTP enabled.
	SignIn(ctx context.Context, username, password, totpCode string) (User, error)

	// SignOut clears the current session.
	SignOut() error

	// Subscribe registers an observer for state changes. The returned
	// function removes the observer.
	Subscribe(fn func(User, State)) (unsubscribe func())
}

// =============================================================================
// OBSERVABLE BASE
// =============================================================================

// observable implements the Subscribe half of Provider.
type observable struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]func(User, State)
}

func (o *observable) Subscribe(fn func(User, State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.observers == nil {
		o.observers = make(map[int]func(User, State))
	}
	id := o.nextID
	o.nextID++
	o.observers[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// notify fans the new state out to every observer.
func (o *observable) notify(user User, state State) {
	o.mu.Lock()
	fns := make([]func(User, State), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(user, state)
	}
}
