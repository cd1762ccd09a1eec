package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/client"
	"github.com/dmitrijs2005/chemtutor/internal/client/credentials"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

const MinPasswordLength = 6

var (
	ErrMissingCredentials      = errors.New("username and password are required")
	ErrPasswordRequired        = errors.New("password is required")
	ErrCurrentPasswordRequired = errors.New("current password is required to change password")
	ErrNewPasswordRequired     = errors.New("new password is required")
	ErrPasswordMismatch        = errors.New("new passwords do not match")
	ErrPasswordTooShort        = fmt.Errorf("new password must be at least %d characters", MinPasswordLength)
)

// ProfileChange is a profile edit as entered by the user. Leaving all three
// password fields empty keeps the password.
type ProfileChange struct {
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (p ProfileChange) changesPassword() bool {
	return p.CurrentPassword != "" || p.NewPassword != "" || p.ConfirmPassword != ""
}

// Validate applies the client-side password rules.
func (p ProfileChange) Validate() error {
	if !p.changesPassword() {
		return nil
	}
	switch {
	case p.CurrentPassword == "":
		return ErrCurrentPasswordRequired
	case p.NewPassword == "":
		return ErrNewPasswordRequired
	case p.NewPassword != p.ConfirmPassword:
		return ErrPasswordMismatch
	case len(p.NewPassword) < MinPasswordLength:
		return ErrPasswordTooShort
	}
	return nil
}

// Status describes the local session.
type Status struct {
	Authenticated bool
	User          *models.User
	// ExpiresAt is read from the token without verification; zero if unknown.
	ExpiresAt time.Time
}

// AuthService manages the account and the local session.
//
// Contract:
//   - Register / Login: authenticate against the server and store the session.
//   - Logout: tell the server (best effort) and always drop the session.
//   - Profile / Me: read the account from the server.
//   - UpdateProfile: validate, send, and adopt a reissued token.
//   - DeleteAccount: delete on the server, then drop the session.
//   - Status: local view of the session; no network.
//   - Ping: server liveness.
type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, change ProfileChange) (*models.ProfileUpdateResult, error)
	DeleteAccount(ctx context.Context, password string) error
	Status(ctx context.Context) Status
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	creds  CredentialStore
	guard  sessionGuard
	log    logging.Logger
}

func NewAuthService(c client.Client, creds CredentialStore, log logging.Logger) AuthService {
	return &authService{
		client: c,
		creds:  creds,
		guard:  sessionGuard{creds: creds, log: log},
		log:    log,
	}
}

func (a *authService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	// a failed sign-in says nothing about the session already stored
	sess, err := a.client.Register(ctx, models.Credentials{Username: username, Password: password, Email: strings.TrimSpace(email)})
	if err != nil {
		return nil, err
	}
	return a.adopt(ctx, sess, username)
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	sess, err := a.client.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return a.adopt(ctx, sess, username)
}

func (a *authService) adopt(ctx context.Context, sess *models.Session, username string) (*models.User, error) {
	user := sess.User
	if user == nil {
		user = &models.User{Username: username}
	}
	if err := a.creds.Save(ctx, sess.Token, user); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	a.log.Info(ctx, "signed in", "username", user.Username)
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}
	if err := a.creds.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	u, err := a.client.FetchProfile(ctx)
	if err != nil {
		return nil, a.guard.check(ctx, err)
	}
	return u, nil
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	u, err := a.client.Me(ctx)
	if err != nil {
		return nil, a.guard.check(ctx, err)
	}
	return u, nil
}

func (a *authService) UpdateProfile(ctx context.Context, change ProfileChange) (*models.ProfileUpdateResult, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{Email: strings.TrimSpace(change.Email)}
	if change.changesPassword() {
		update.CurrentPassword = change.CurrentPassword
		update.NewPassword = change.NewPassword
	}

	res, err := a.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, a.guard.check(ctx, err)
	}

	switch {
	case res.Token != "":
		if err := a.creds.Refresh(ctx, res.Token, res.User); err != nil {
			return res, fmt.Errorf("store refreshed session: %w", err)
		}
	case res.User != nil:
		if cur, ok := a.creds.Current(ctx); ok {
			if err := a.creds.Refresh(ctx, cur.Token, res.User); err != nil {
				return res, fmt.Errorf("store profile: %w", err)
			}
		}
	}
	return res, nil
}

func (a *authService) DeleteAccount(ctx context.Context, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if err := a.client.DeleteAccount(ctx, password); err != nil {
		return a.guard.check(ctx, err)
	}
	if err := a.creds.Clear(ctx); err != nil {
		return fmt.Errorf("account deleted, but local session could not be cleared: %w", err)
	}
	return nil
}

func (a *authService) Status(ctx context.Context) Status {
	cur, ok := a.creds.Current(ctx)
	if !ok {
		return Status{}
	}
	st := Status{Authenticated: true, User: cur.User}
	if exp, ok := credentials.ExpiresAt(cur.Token); ok {
		st.ExpiresAt = exp
	}
	return st
}

func (a *authService) Ping(ctx context.Context) error {
	h, err := a.client.Health(ctx)
	if err != nil {
		return a.guard.check(ctx, err)
	}
	if h.Status != "" && !strings.EqualFold(h.Status, "ok") {
		return fmt.Errorf("server reports status %q", h.Status)
	}
	return nil
}
