// Package services holds the ChemTutor client use cases that sit between the
// CLI and the API gateway: account management and chemistry queries.
//
// Every service method that reaches the API with a stored session applies the
// same rule on an Unauthenticated failure: the stored credential is cleared
// once, and the classified error is returned unchanged. Login and Register
// are exempt, since a rejected sign-in leaves the existing session valid.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/chemtutor/internal/client/apierr"
	"github.com/dmitrijs2005/chemtutor/internal/client/credentials"
	"github.com/dmitrijs2005/chemtutor/internal/client/history"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

var ErrEmptyInput = errors.New("input must not be empty")

// CredentialStore is the part of credentials.Store the services need.
type CredentialStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	Refresh(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
	Current(ctx context.Context) (credentials.Credential, bool)
}

// HistoryCache is the part of history.Cache the query service needs.
type HistoryCache interface {
	Record(ctx context.Context, question, category string) error
	Entries() []history.Entry
	Lookup(index int) (history.Entry, error)
	RecentCategories() []string
}

// sessionGuard drops the credential when the server says the session is no
// longer valid.
type sessionGuard struct {
	creds CredentialStore
	log   logging.Logger
}

func (g sessionGuard) check(ctx context.Context, err error) error {
	if err == nil || !apierr.IsUnauthenticated(err) {
		return err
	}
	g.log.Info(ctx, "session rejected by server, clearing credential")
	if cerr := g.creds.Clear(ctx); cerr != nil {
		g.log.Error(ctx, "failed to clear credential", "error", cerr)
	}
	return err
}
