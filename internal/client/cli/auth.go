package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/client/services"
	"github.com/dmitrijs2005/chemtutor/internal/common"
	"github.com/dustin/go-humanize"
)

// getSimpleText, getPassword and getSecret are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getSecret     = GetSecret
)

var (
	errPasswordsDiffer = errors.New("passwords do not match")
	errNotConfirmed    = errors.New("not confirmed")
)

// readSecret reads a secret and returns it as a string, wiping the buffer.
func (a *App) readSecret(prompt string) (string, error) {
	var (
		b   []byte
		err error
	)
	if prompt == "" {
		b, err = getPassword(a.out)
	} else {
		b, err = getSecret(a.out, prompt)
	}
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

// Register prompts for a username, an optional email and a password (twice)
// and creates the account. On success the user is signed in.
func (a *App) Register(ctx context.Context, _ string) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		a.println("Error:", errPasswordsDiffer)
		return errPasswordsDiffer
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		u, err := a.authService.Register(ctx, username, password, email)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Welcome, %s! You are now signed in.\n", displayName(u, username)), nil
	})
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context, _ string) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("")
	if err != nil {
		return err
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		u, err := a.authService.Login(ctx, username, password)
		if err != nil {
			return "", err
		}
		a.log.Info(ctx, "signed in", "username", displayName(u, username))
		return fmt.Sprintf("Logged in as %s\n", displayName(u, username)), nil
	})
}

// Logout signs out. The local session is dropped even if the server call
// fails.
func (a *App) Logout(ctx context.Context, _ string) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	a.println("Logged out.")
	return nil
}

// Profile shows the account as the server knows it.
func (a *App) Profile(ctx context.Context, _ string) error {
	return a.exec(ctx, func(ctx context.Context) (string, error) {
		u, err := a.authService.Profile(ctx)
		if err != nil {
			return "", err
		}
		return renderUser(u), nil
	})
}

// UpdateProfile edits the email and, optionally, the password.
func (a *App) UpdateProfile(ctx context.Context, _ string) error {
	current, err := a.authService.Profile(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", current.Email), a.out)
	if err != nil {
		return err
	}
	change := services.ProfileChange{Email: email}
	if change.Email == "" {
		change.Email = current.Email
	}

	answer, err := getSimpleText(a.reader, "Change password? (y/N)", a.out)
	if err != nil {
		return err
	}
	if isYes(answer) {
		if change.CurrentPassword, err = a.readSecret("Current password"); err != nil {
			return err
		}
		if change.NewPassword, err = a.readSecret("New password"); err != nil {
			return err
		}
		if change.ConfirmPassword, err = a.readSecret("Confirm new password"); err != nil {
			return err
		}
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		res, err := a.authService.UpdateProfile(ctx, change)
		if err != nil {
			return "", err
		}
		if res != nil && res.Message != "" {
			return res.Message + "\n", nil
		}
		return "Profile updated.\n", nil
	})
}

// DeleteAccount removes the account after an explicit confirmation.
func (a *App) DeleteAccount(ctx context.Context, _ string) error {
	answer, err := getSimpleText(a.reader, "This permanently deletes your account and all its data. Type 'delete' to confirm", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "delete") {
		a.println("Cancelled.")
		return errNotConfirmed
	}
	password, err := a.readSecret("")
	if err != nil {
		return err
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		if err := a.authService.DeleteAccount(ctx, password); err != nil {
			return "", err
		}
		return "Account deleted.\n", nil
	})
}

// Status shows the local session without contacting the server.
func (a *App) Status(ctx context.Context, _ string) error {
	st := a.authService.Status(ctx)
	if !st.Authenticated {
		a.println("Not logged in.")
		return nil
	}

	a.println("Logged in as", displayName(st.User, "unknown user"))
	if !st.ExpiresAt.IsZero() {
		verb := "expires"
		if st.ExpiresAt.Before(time.Now()) {
			verb = "expired"
		}
		a.printf("Session %s %s\n", verb, humanize.Time(st.ExpiresAt))
	}
	return nil
}

func displayName(u *models.User, fallback string) string {
	if u != nil && u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(fallback)
}

func renderUser(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username: %s\n", u.Username)
	if u.Email != "" {
		fmt.Fprintf(&b, "Email:    %s\n", u.Email)
	}
	if u.DateJoined != "" {
		joined := u.DateJoined
		if t, err := time.Parse(time.RFC3339, u.DateJoined); err == nil {
			joined = fmt.Sprintf("%s (%s)", t.Format(time.DateOnly), humanize.Time(t))
		}
		fmt.Fprintf(&b, "Joined:   %s\n", joined)
	}
	return b.String()
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}
