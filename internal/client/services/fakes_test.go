package services

import (
	"context"

	"github.com/dmitrijs2005/chemtutor/internal/client/apierr"
	"github.com/dmitrijs2005/chemtutor/internal/client/credentials"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
)

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	HealthRet *models.Health
	HealthErr error

	BalanceRet *models.BalanceResult
	BalanceErr error

	AskRet *models.Answer
	AskErr error

	CorrectRet *models.Correction
	CorrectErr error

	SessionRet  *models.Session
	RegisterErr error
	LoginErr    error
	LogoutErr   error

	UserRet    *models.User
	ProfileErr error
	MeErr      error

	UpdateRet *models.ProfileUpdateResult
	UpdateErr error

	DeleteErr error

	LastBalanceInput string
	LastQuestion     string
	LastCategory     string
	LastStatement    string
	LastCreds        models.Credentials
	LastUpdate       models.ProfileUpdate
	LastDeletePw     string
	LogoutCalls      int
	AskCalls         int
}

func (f *fakeClient) Health(context.Context) (*models.Health, error) {
	if f.HealthErr != nil {
		return nil, f.HealthErr
	}
	if f.HealthRet == nil {
		return &models.Health{Status: "ok"}, nil
	}
	return f.HealthRet, nil
}

func (f *fakeClient) BalanceReaction(_ context.Context, input string) (*models.BalanceResult, error) {
	f.LastBalanceInput = input
	return f.BalanceRet, f.BalanceErr
}

func (f *fakeClient) AskQuestion(_ context.Context, question, category string) (*models.Answer, error) {
	f.AskCalls++
	f.LastQuestion, f.LastCategory = question, category
	if f.AskErr != nil {
		return nil, f.AskErr
	}
	return f.AskRet, nil
}

func (f *fakeClient) CorrectStatement(_ context.Context, statement string) (*models.Correction, error) {
	f.LastStatement = statement
	return f.CorrectRet, f.CorrectErr
}

func (f *fakeClient) Register(_ context.Context, creds models.Credentials) (*models.Session, error) {
	f.LastCreds = creds
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return f.SessionRet, nil
}

func (f *fakeClient) Login(_ context.Context, creds models.Credentials) (*models.Session, error) {
	f.LastCreds = creds
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.SessionRet, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	return f.UserRet, nil
}

func (f *fakeClient) FetchProfile(context.Context) (*models.User, error) {
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	return f.UserRet, nil
}

func (f *fakeClient) UpdateProfile(_ context.Context, u models.ProfileUpdate) (*models.ProfileUpdateResult, error) {
	f.LastUpdate = u
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return f.UpdateRet, nil
}

func (f *fakeClient) DeleteAccount(_ context.Context, password string) error {
	f.LastDeletePw = password
	return f.DeleteErr
}

// countingStore wraps a real credential store and counts Clear calls.
type countingStore struct {
	*credentials.Store
	ClearCalls int
}

func (c *countingStore) Clear(ctx context.Context) error {
	c.ClearCalls++
	return c.Store.Clear(ctx)
}

func unauthenticated() error {
	return apierr.Classify(apierr.Signal{StatusCode: 401, Body: []byte(`{"detail":"Invalid token."}`)})
}

func rejected(msg string) error {
	return apierr.Classify(apierr.Signal{StatusCode: 400, Body: []byte(`{"error":"` + msg + `"}`)})
}
