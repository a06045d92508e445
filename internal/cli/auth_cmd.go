// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/morganforge/pdftutor/internal/auth"
)

// =============================================================================
// AUTH COMMAND
// =============================================================================

// HandleAuth manages local identity: login, logout, whoami, register, mfa.
func HandleAuth(args Args) error {
	provider, err := auth.NewLocalProvider()
	if err != nil {
		return fmt.Errorf("open identity store: %w", err)
	}
	provider.Resolve()

	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "whoami":
		return authWhoami(provider)
	case "login":
		return authLogin(provider)
	case "logout":
		return authLogout(provider)
	case "register":
		return authRegister(provider)
	case "mfa":
		return authEnableMFA(provider)
	default:
		return fmt.Errorf("unknown auth subcommand %q", p.Subcommand())
	}
}

func authWhoami(provider *auth.LocalProvider) error {
	user, state := provider.Current()
	switch state {
	case auth.StateSignedIn:
		fmt.Printf("Signed in as %s (uid %s)\n", user.Username, user.UID)
	default:
		fmt.Println("Not signed in.")
	}
	return nil
}

func authLogin(provider *auth.LocalProvider) error {
	username, password, err := auth.PromptCredentials()
	if err != nil {
		return err
	}

	user, err := provider.SignIn(context.Background(), username, password, "")
	if errors.Is(err, auth.ErrMFARequired) {
		code, perr := auth.PromptTOTP()
		if perr != nil {
			return perr
		}
		user, err = provider.SignIn(context.Background(), username, password, code)
	}
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return fmt.Errorf("invalid username or password")
		}
		return err
	}

	fmt.Printf("Signed in as %s\n", user.Username)
	return nil
}

func authLogout(provider *auth.LocalProvider) error {
	if err := provider.SignOut(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func authRegister(provider *auth.LocalProvider) error {
	username, password, err := auth.PromptCredentials()
	if err != nil {
		return err
	}
	confirm, err := auth.PromptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := provider.Register(username, password, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("Account created for %s. Run \"pdftutor auth login\" to sign in.\n", user.Username)
	return nil
}

func authEnableMFA(provider *auth.LocalProvider) error {
	user, state := provider.Current()
	if state != auth.StateSignedIn {
		return auth.ErrNotSignedIn
	}

	url, err := provider.EnableTOTP(user.Username)
	if err != nil {
		return err
	}
	fmt.Println("TOTP enabled. Add this URL to your authenticator app:")
	fmt.Println(url)
	return nil
}
