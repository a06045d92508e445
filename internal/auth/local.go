// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/pbkdf2"

	"github.com/morganforge/pdftutor/internal/util"
)

const (
	// pbkdf2Iterations follows NIST SP 800-132 guidance for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000

	// keySize is the derived hash size (32 bytes / 256 bits).
	keySize = 32

	// saltSize is the per-account salt size.
	saltSize = 32

	// totpIssuer labels generated TOTP secrets in authenticator apps.
	totpIssuer = "pdftutor"
)

// =============================================================================
// STORED SHAPES
// =============================================================================

// account is one stored identity record.
type account struct {
	User User `json:"user"`

	SaltHex     string `json:"salt"`
	PassHashHex string `json:"pass_hash"`

	// TOTPSecret is set when multi-factor auth is enabled.
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// identityFile is the on-disk registry plus the remembered session.
type identityFile struct {
	Accounts []account `json:"accounts"`

	// CurrentUID remembers who was signed in across restarts.
	CurrentUID string `json:"current_uid,omitempty"`
}

// =============================================================================
// LOCAL PROVIDER
// =============================================================================

// LocalProvider stores accounts in a JSON file, ~/.pdftutor/identity.json by
// default.
type LocalProvider struct {
	observable

	mu   sync.Mutex
	path string
	data identityFile

	current User
	state   State
}

// NewLocalProvider creates a provider backed by the default identity file.
func NewLocalProvider() (*LocalProvider, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewLocalProviderWithPath(filepath.Join(homeDir, ".pdftutor", "identity.json"))
}

// NewLocalProviderWithPath creates a provider backed by a custom identity
// file. The provider starts in StateLoading until Resolve is called.
func NewLocalProviderWithPath(path string) (*LocalProvider, error) {
	p := &LocalProvider{
		path:  path,
		state: StateLoading,
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// load reads the identity file. A missing file means a fresh install.
func (p *LocalProvider) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read identity file: %w", err)
	}
	if err := json.Unmarshal(data, &p.data); err != nil {
		return fmt.Errorf("failed to parse identity file: %w", err)
	}
	return nil
}

// save writes the identity file atomically. Mode 0600: it holds hashes and
// TOTP secrets.
func (p *LocalProvider) save() error {
	data, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(p.path, data, 0600)
}

// Resolve settles the initial Loading state by restoring the remembered
// session, if any. Call once at startup.
func (p *LocalProvider) Resolve() {
	p.mu.Lock()
	if p.data.CurrentUID != "" {
		if acct := p.findByUIDLocked(p.data.CurrentUID); acct != nil {
			p.current = acct.User
			p.state = StateSignedIn
			user, state := p.current, p.state
			p.mu.Unlock()
			p.notify(user, state)
			return
		}
	}
	p.state = StateSignedOut
	p.mu.Unlock()
	p.notify(User{}, StateSignedOut)
}

// =============================================================================
// PROVIDER IMPLEMENTATION
// =============================================================================

// Current returns the current user and state.
func (p *LocalProvider) Current() (User, State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.state
}

// SignIn authenticates against the stored accounts.
func (p *LocalProvider) SignIn(ctx context.Context, username, password, totpCode string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	p.mu.Lock()
	acct := p.findByUsernameLocked(username)
	if acct == nil {
		p.mu.Unlock()
		// Same error as a bad password so usernames can't be probed.
		return User{}, ErrInvalidCredentials
	}

	salt, err := hex.DecodeString(acct.SaltHex)
	if err != nil {
		p.mu.Unlock()
		return User{}, fmt.Errorf("corrupt identity record: %w", err)
	}
	want, err := hex.DecodeString(acct.PassHashHex)
	if err != nil {
		p.mu.Unlock()
		return User{}, fmt.Errorf("corrupt identity record: %w", err)
	}

	got := deriveHash(password, salt)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		p.mu.Unlock()
		return User{}, ErrInvalidCredentials
	}

	if acct.TOTPSecret != "" {
		if totpCode == "" {
			p.mu.Unlock()
			return User{}, ErrMFARequired
		}
		if !totp.Validate(totpCode, acct.TOTPSecret) {
			p.mu.Unlock()
			return User{}, ErrInvalidCredentials
		}
	}

	p.current = acct.User
	p.state = StateSignedIn
	p.data.CurrentUID = acct.User.UID
	saveErr := p.save()
	user := p.current
	p.mu.Unlock()

	p.notify(user, StateSignedIn)
	if saveErr != nil {
		return user, fmt.Errorf("signed in but failed to remember session: %w", saveErr)
	}
	return user, nil
}

// SignOut clears the current session.
func (p *LocalProvider) SignOut() error {
	p.mu.Lock()
	p.current = User{}
	p.state = StateSignedOut
	p.data.CurrentUID = ""
	err := p.save()
	p.mu.Unlock()

	p.notify(User{}, StateSignedOut)
	return err
}

// =============================================================================
// ACCOUNT MANAGEMENT
// =============================================================================

// Register creates a new account. The new account is not signed in.
func (p *LocalProvider) Register(username, password, displayName string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findByUsernameLocked(username) != nil {
		return User{}, ErrUserExists
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return User{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	if displayName == "" {
		displayName = username
	}
	user := User{
		UID:         uuid.NewString(),
		Username:    username,
		DisplayName: displayName,
	}
	p.data.Accounts = append(p.data.Accounts, account{
		User:        user,
		SaltHex:     hex.EncodeToString(salt),
		PassHashHex: hex.EncodeToString(deriveHash(password, salt)),
	})
	if err := p.save(); err != nil {
		return User{}, err
	}
	return user, nil
}

// EnableTOTP generates and stores a TOTP secret for an account. The returned
// URL can be rendered as a QR code or entered manually in an authenticator.
func (p *LocalProvider) EnableTOTP(username string) (secretURL string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct := p.findByUsernameLocked(username)
	if acct == nil {
		return "", ErrInvalidCredentials
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: username,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	acct.TOTPSecret = key.Secret()
	if err := p.save(); err != nil {
		return "", err
	}
	return key.URL(), nil
}

// =============================================================================
// INTERNAL
// =============================================================================

func (p *LocalProvider) findByUsernameLocked(username string) *account {
	for i := range p.data.Accounts {
		if p.data.Accounts[i].User.Username == username {
			return &p.data.Accounts[i]
		}
	}
	return nil
}

func (p *LocalProvider) findByUIDLocked(uid string) *account {
	for i := range p.data.Accounts {
		if p.data.Accounts[i].User.UID == uid {
			return &p.data.Accounts[i]
		}
	}
	return nil
}

// deriveHash derives a password hash using PBKDF2-SHA-256.
func deriveHash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keySize, sha256.New)
}
