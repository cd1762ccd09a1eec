package client

import (
	"context"

	"github.com/dmitrijs2005/chemtutor/internal/client/models"
)

// Client is the ChemTutor API contract. Every failure is an *apierr.Error.
type Client interface {
	Health(ctx context.Context) (*models.Health, error)
	BalanceReaction(ctx context.Context, input string) (*models.BalanceResult, error)
	AskQuestion(ctx context.Context, question, category string) (*models.Answer, error)
	CorrectStatement(ctx context.Context, statement string) (*models.Correction, error)

	Register(ctx context.Context, creds models.Credentials) (*models.Session, error)
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	FetchProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.ProfileUpdateResult, error)
	DeleteAccount(ctx context.Context, password string) error
}

// TokenSource yields the current credential token, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}
