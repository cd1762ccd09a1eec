package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/apierr"
	"github.com/dmitrijs2005/chemtutor/internal/client/client"
	"github.com/dmitrijs2005/chemtutor/internal/client/config"
	"github.com/dmitrijs2005/chemtutor/internal/client/history"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/client/services"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestApp(as services.AuthService, qs services.QueryService, r *bufio.Reader) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	if r == nil {
		r = readerFromLines()
	}
	return &App{
		log:          logging.Discard(),
		authService:  as,
		queryService: qs,
		reader:       r,
		out:          &out,
	}, &out
}

type fakeQS struct {
	balanceIn  string
	balanceOut *models.BalanceResult
	balanceErr error

	askQ   string
	askCat string
	askOut *models.Answer
	askErr error

	reaskIdx   int
	reaskEntry history.Entry
	reaskErr   error

	correctIn  string
	correctOut *models.Correction
	correctErr error

	history    []history.Entry
	categories []string
}

func (f *fakeQS) Balance(_ context.Context, input string) (*models.BalanceResult, error) {
	f.balanceIn = input
	return f.balanceOut, f.balanceErr
}

func (f *fakeQS) Ask(_ context.Context, q, cat string) (*models.Answer, error) {
	f.askQ, f.askCat = q, cat
	return f.askOut, f.askErr
}

func (f *fakeQS) Reask(_ context.Context, index int) (history.Entry, *models.Answer, error) {
	f.reaskIdx = index
	if f.reaskErr != nil {
		return history.Entry{}, nil, f.reaskErr
	}
	return f.reaskEntry, f.askOut, nil
}

func (f *fakeQS) Correct(_ context.Context, s string) (*models.Correction, error) {
	f.correctIn = s
	return f.correctOut, f.correctErr
}

func (f *fakeQS) History() []history.Entry { return f.history }

func (f *fakeQS) Categories() []string {
	if f.categories == nil {
		return history.Categories
	}
	return f.categories
}

type fakeAS struct {
	status services.Status

	pingErr error

	regUser, regPass, regEmail string
	loginUser, loginPass       string
	userOut                    *models.User
	authErr                    error

	logoutCalled bool
	logoutErr    error

	profileOut *models.User
	profileErr error

	change    services.ProfileChange
	updateOut *models.ProfileUpdateResult
	updateErr error

	deletePass string
	deleteErr  error
}

func (f *fakeAS) Register(_ context.Context, u, p, e string) (*models.User, error) {
	f.regUser, f.regPass, f.regEmail = u, p, e
	return f.userOut, f.authErr
}

func (f *fakeAS) Login(_ context.Context, u, p string) (*models.User, error) {
	f.loginUser, f.loginPass = u, p
	return f.userOut, f.authErr
}

func (f *fakeAS) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeAS) Profile(context.Context) (*models.User, error) { return f.profileOut, f.profileErr }
func (f *fakeAS) Me(context.Context) (*models.User, error)      { return f.profileOut, f.profileErr }

func (f *fakeAS) UpdateProfile(_ context.Context, c services.ProfileChange) (*models.ProfileUpdateResult, error) {
	f.change = c
	return f.updateOut, f.updateErr
}

func (f *fakeAS) DeleteAccount(_ context.Context, p string) error {
	f.deletePass = p
	return f.deleteErr
}

func (f *fakeAS) Status(context.Context) services.Status { return f.status }
func (f *fakeAS) Ping(context.Context) error             { return f.pingErr }

// ------------ tests ------------

func TestApp_StatusPrompt(t *testing.T) {
	as := &fakeAS{}
	app, _ := newTestApp(as, &fakeQS{}, nil)
	ctx := context.Background()

	require.False(t, app.isLoggedIn(ctx))
	require.Equal(t, "", app.status(ctx))

	as.status = services.Status{Authenticated: true, User: &models.User{Username: "alice"}}
	require.True(t, app.isLoggedIn(ctx))
	require.Equal(t, "(alice)", app.status(ctx))

	as.status = services.Status{Authenticated: true}
	require.Equal(t, "(signed in)", app.status(ctx))
}

func TestApp_ReportMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthenticated", &apierr.Error{Kind: apierr.KindUnauthenticated, StatusCode: 401}, msgSessionExpired + "\n"},
		{"timeout", &apierr.Error{Kind: apierr.KindTimeout}, msgTimeout + "\n"},
		{"unreachable", &apierr.Error{Kind: apierr.KindNetworkUnreachable}, msgUnreachable + "\n"},
		{"rejected", &apierr.Error{Kind: apierr.KindServerRejected, Message: "Invalid formula", Details: "Unknown element Xx"},
			"Error: Invalid formula\nDetails: Unknown element Xx\n"},
		{"unexpected", &apierr.Error{Kind: apierr.KindUnexpected, Message: "HTTP 500"}, "Unexpected error: HTTP 500\n"},
		{"local", services.ErrEmptyInput, "Error: input must not be empty\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, out := newTestApp(&fakeAS{}, &fakeQS{}, nil)
			app.report(context.Background(), tc.err)
			require.Equal(t, tc.want, out.String())
		})
	}
}

func TestApp_ExecDropsStaleResult(t *testing.T) {
	app, out := newTestApp(&fakeAS{}, &fakeQS{}, nil)
	ctx := context.Background()

	// a newer command starts while the first one is still waiting
	err := app.exec(ctx, func(context.Context) (string, error) {
		newer := app.view.Begin()
		require.True(t, app.view.Publish(newer, "newer\n"))
		return "older\n", nil
	})
	require.NoError(t, err)
	require.Empty(t, out.String())

	got, ok := app.view.Get()
	require.True(t, ok)
	require.Equal(t, "newer\n", got)

	// stale failures are not reported either
	err = app.exec(ctx, func(context.Context) (string, error) {
		app.view.Begin()
		return "", &apierr.Error{Kind: apierr.KindTimeout}
	})
	require.Error(t, err)
	require.Empty(t, out.String())
}

func TestApp_ExecConcurrentOlderCommandLoses(t *testing.T) {
	app, out := newTestApp(&fakeAS{}, &fakeQS{}, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- app.exec(ctx, func(context.Context) (string, error) {
			close(started)
			<-release
			return "older\n", nil
		})
	}()

	<-started
	require.NoError(t, app.exec(ctx, func(context.Context) (string, error) {
		return "newer\n", nil
	}))
	close(release)
	require.NoError(t, <-done)

	require.Equal(t, "newer\n", out.String())
}

func TestApp_Health(t *testing.T) {
	as := &fakeAS{}
	app, out := newTestApp(as, &fakeQS{}, nil)

	require.NoError(t, app.Health(context.Background(), ""))
	require.Equal(t, "Server is up.\n", out.String())

	out.Reset()
	as.pingErr = &apierr.Error{Kind: apierr.KindNetworkUnreachable}
	require.Error(t, app.Health(context.Background(), ""))
	require.Equal(t, msgUnreachable+"\n", out.String())
}

func TestApp_BalanceFromArgs(t *testing.T) {
	w := 18.015
	qs := &fakeQS{balanceOut: &models.BalanceResult{
		Balanced: "2H2 + O2 -> 2H2O",
		Type:     "synthesis",
		Metadata: models.ReactionMetadata{
			Reactants: []models.Compound{{Input: "H2", Coeff: 2}, {Input: "O2", Coeff: 1}},
			Products:  []models.Compound{{Formula: "H2O", Coeff: 2, IUPACName: "oxidane", MolecularWeight: &w}},
		},
		OxidationStates: map[string][]map[string]int{
			"products": {{"0": -2, "1": 1, "10": 1, "2": 1}},
		},
	}}
	app, out := newTestApp(&fakeAS{}, qs, nil)

	require.NoError(t, app.Balance(context.Background(), "H2  + O2 ->  H2O "))
	require.Equal(t, "H2  + O2 ->  H2O ", qs.balanceIn, "reaction text is sent as typed")

	got := out.String()
	require.Contains(t, got, "Balanced: 2H2 + O2 -> 2H2O\n")
	require.Contains(t, got, "Type: synthesis\n")
	require.Contains(t, got, "  2 H2\n")
	require.Contains(t, got, "  2 H2O  oxidane  (18.015 g/mol)\n")
	require.Contains(t, got, "  products #1: 0:-2 1:+1 2:+1 10:+1\n")
}

func TestApp_BalancePromptsAndReportsRejection(t *testing.T) {
	qs := &fakeQS{balanceErr: &apierr.Error{Kind: apierr.KindServerRejected, Message: "Could not parse reaction"}}
	app, out := newTestApp(&fakeAS{}, qs, readerFromLines("Fe + O2"))

	require.Error(t, app.Balance(context.Background(), ""))
	require.Equal(t, "Fe + O2", qs.balanceIn)
	require.Contains(t, out.String(), "Error: Could not parse reaction\n")
}

func TestApp_AskPromptsForQuestionAndCategory(t *testing.T) {
	qs := &fakeQS{askOut: &models.Answer{Answer: "pH measures acidity.", Sources: models.Sources{"Textbook"}}}
	app, out := newTestApp(&fakeAS{}, qs, readerFromLines("What is pH?", "physical"))

	require.NoError(t, app.Ask(context.Background(), ""))
	require.Equal(t, "What is pH?", qs.askQ)
	require.Equal(t, "physical", qs.askCat)

	got := out.String()
	require.Contains(t, got, "Category (General, Organic, Inorganic, Analytical, Physical, Biochemistry) [General]")
	require.Contains(t, got, "Q: What is pH?\nA: pH measures acidity.\n")
	require.Contains(t, got, "Sources:\n  - Textbook\n")
	require.Contains(t, got, "You might also ask:\n")
}

func TestApp_AskWithInlineQuestionUsesDefaultCategory(t *testing.T) {
	qs := &fakeQS{askOut: &models.Answer{Answer: "ok"}}
	app, _ := newTestApp(&fakeAS{}, qs, readerFromLines(""))

	require.NoError(t, app.Ask(context.Background(), "what is a mole?"))
	require.Equal(t, "what is a mole?", qs.askQ)
	require.Equal(t, "", qs.askCat)
}

func TestApp_AskSessionExpired(t *testing.T) {
	qs := &fakeQS{askErr: &apierr.Error{Kind: apierr.KindUnauthenticated, Code: "AUTH_EXPIRED"}}
	app, out := newTestApp(&fakeAS{}, qs, readerFromLines("General"))

	err := app.Ask(context.Background(), "why?")
	require.True(t, apierr.IsUnauthenticated(err))
	require.True(t, strings.HasSuffix(out.String(), msgSessionExpired+"\n"))
}

func TestApp_Again(t *testing.T) {
	qs := &fakeQS{
		askOut:     &models.Answer{Answer: "Carbon has 4 valence electrons."},
		reaskEntry: history.Entry{Question: "valence of carbon", Category: "General"},
	}
	app, out := newTestApp(&fakeAS{}, qs, nil)
	ctx := context.Background()

	require.ErrorIs(t, app.Again(ctx, ""), errUsageAgain)
	require.ErrorIs(t, app.Again(ctx, "x"), errUsageAgain)
	require.Contains(t, out.String(), "Usage: again <n>")

	out.Reset()
	require.NoError(t, app.Again(ctx, " 2 "))
	require.Equal(t, 2, qs.reaskIdx)
	require.Contains(t, out.String(), "Q: valence of carbon\nA: Carbon has 4 valence electrons.\n")

	out.Reset()
	qs.reaskErr = history.ErrNoSuchEntry
	require.ErrorIs(t, app.Again(ctx, "9"), history.ErrNoSuchEntry)
	require.True(t, strings.HasPrefix(out.String(), "Error: "))
}

func TestApp_History(t *testing.T) {
	qs := &fakeQS{}
	app, out := newTestApp(&fakeAS{}, qs, nil)

	require.NoError(t, app.History(context.Background(), ""))
	require.Equal(t, "No questions yet.\n", out.String())

	out.Reset()
	qs.history = []history.Entry{
		{Question: "What is pH?", Category: "General", Timestamp: time.Now().Add(-3 * time.Minute).UnixMilli()},
		{Question: "What is an ester?", Category: "Organic", Timestamp: time.Now().Add(-50 * time.Hour).UnixMilli()},
	}
	require.NoError(t, app.History(context.Background(), ""))
	require.Equal(t,
		" 1. [General] What is pH? (3 minutes ago)\n 2. [Organic] What is an ester? (2 days ago)\n",
		out.String())
}

func TestApp_Categories(t *testing.T) {
	app, out := newTestApp(&fakeAS{}, &fakeQS{categories: []string{"Organic", "General"}}, nil)
	require.NoError(t, app.Categories(context.Background(), ""))
	require.Equal(t, "Categories: Organic, General\n", out.String())
}

func TestApp_Correct(t *testing.T) {
	qs := &fakeQS{correctOut: &models.Correction{
		Success:   true,
		Original:  "Water boils at 50C",
		Corrected: "Water boils at 100C at sea level",
		Changed:   true,
	}}
	app, out := newTestApp(&fakeAS{}, qs, readerFromLines("Water boils", "at 50C", ""))

	require.NoError(t, app.Correct(context.Background(), ""))
	require.Equal(t, "Water boils at 50C", qs.correctIn)
	require.Contains(t, out.String(), "Original:  Water boils at 50C\nCorrected: Water boils at 100C at sea level\n")
	require.Contains(t, out.String(), "Try checking these:\n")

	out.Reset()
	qs.correctOut = &models.Correction{Success: true, Changed: false}
	require.NoError(t, app.Correct(context.Background(), "NaCl is salt"))
	require.Equal(t, "NaCl is salt", qs.correctIn)
	require.Contains(t, out.String(), "The statement looks correct.\n")
}

// ------------ end to end ------------

func TestNewApp_AskRecordsHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/qa/":
			var req models.QuestionRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"answer":  "Answer to " + req.Question + " (" + req.Category + ")",
				"sources": "General Chemistry",
			})
		case "/api/auth/profile/":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Token expired","error_code":"AUTH_EXPIRED"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BaseURL = ts.URL + "/api"
	cfg.RequestTimeout = 5 * time.Second
	cfg.DatabasePath = ":memory:"
	cfg.LogLevel = "error"

	ctx := context.Background()
	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	var out bytes.Buffer
	app.out = &out
	app.reader = readerFromLines("organic")

	require.NoError(t, app.Ask(ctx, "What is benzene?"))
	require.Contains(t, out.String(), "A: Answer to What is benzene? (Organic)\n")
	require.Contains(t, out.String(), "  - General Chemistry\n")

	h := app.queryService.History()
	require.Len(t, h, 1)
	require.Equal(t, "What is benzene?", h[0].Question)
	require.Equal(t, "Organic", h[0].Category)
	require.Equal(t, []string{"Organic"}, app.queryService.Categories()[:1])

	out.Reset()
	require.Error(t, app.Profile(ctx, ""))
	require.False(t, app.isLoggedIn(ctx))
}

func TestNewApp_InvalidBaseURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BaseURL = "not a url"
	cfg.DatabasePath = ":memory:"

	_, err := NewApp(context.Background(), cfg)
	require.ErrorIs(t, err, client.ErrInvalidBaseURL)
}
