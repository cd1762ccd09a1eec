package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/chemtutor/internal/client/apierr"
	"github.com/dmitrijs2005/chemtutor/internal/client/client"
	"github.com/dmitrijs2005/chemtutor/internal/client/config"
	"github.com/dmitrijs2005/chemtutor/internal/client/credentials"
	"github.com/dmitrijs2005/chemtutor/internal/client/history"
	"github.com/dmitrijs2005/chemtutor/internal/client/latest"
	"github.com/dmitrijs2005/chemtutor/internal/client/repositories/records"
	"github.com/dmitrijs2005/chemtutor/internal/client/services"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

const (
	msgSessionExpired = "Session expired. Please login again."
	msgTimeout        = "The request timed out. Please try again."
	msgUnreachable    = "Cannot reach the ChemTutor server. Check your connection and try again."
)

type App struct {
	config       *config.Config
	db           *sql.DB
	log          logging.Logger
	authService  services.AuthService
	queryService services.QueryService
	reader       *bufio.Reader
	out          io.Writer

	// view holds the output of the newest command that talked to the server.
	view latest.Slot[string]
}

// NewApp wires the local database, the credential store, the API client and
// the services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	repo := records.NewSQLiteRepository(db)
	creds := credentials.NewStore(repo, log)

	apiClient, err := client.NewHTTPClient(client.Options{
		BaseURL:    c.BaseURL,
		Timeout:    c.RequestTimeout,
		AuthScheme: c.AuthScheme,
	}, creds, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	hist := history.NewCache(repo, log)
	hist.Load(ctx)

	return &App{
		config:       c,
		db:           db,
		log:          log,
		authService:  services.NewAuthService(apiClient, creds, log),
		queryService: services.NewQueryService(apiClient, creds, hist, log),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("Welcome to ChemTutor CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
}

func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.log.Error(context.Background(), "failed to close database", "error", err)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.Status(ctx).Authenticated
}

// status is shown in the prompt: the signed-in username, if any.
func (a *App) status(ctx context.Context) string {
	st := a.authService.Status(ctx)
	if !st.Authenticated {
		return ""
	}
	if st.User != nil && st.User.Username != "" {
		return "(" + st.User.Username + ")"
	}
	return "(signed in)"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// exec runs one server-bound command and prints its output, unless a newer
// command has taken over the view in the meantime. The REPL runs commands
// one at a time, so a result goes stale only when exec is called from
// several goroutines; each call is bounded by the gateway's request timeout
// either way.
func (a *App) exec(ctx context.Context, fn func(ctx context.Context) (string, error)) error {
	ticket := a.view.Begin()

	text, err := fn(ctx)
	if !a.view.Current(ticket) {
		a.log.Debug(ctx, "dropping stale command result")
		return err
	}
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if a.view.Publish(ticket, text) {
		fmt.Fprint(a.out, text)
	}
	return nil
}

// report prints one of a few fixed messages for a failed command.
func (a *App) report(ctx context.Context, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		a.println("Error:", err)
		return
	}

	a.log.Debug(ctx, "request failed", "kind", apiErr.Kind.String(), "status", apiErr.StatusCode, "code", apiErr.Code)

	switch apiErr.Kind {
	case apierr.KindUnauthenticated:
		a.println(msgSessionExpired)
	case apierr.KindTimeout:
		a.println(msgTimeout)
	case apierr.KindNetworkUnreachable:
		a.println(msgUnreachable)
	case apierr.KindServerRejected:
		a.println("Error:", apiErr.Message)
		if apiErr.Details != "" {
			a.println("Details:", apiErr.Details)
		}
	default:
		a.println("Unexpected error:", apiErr.Error())
	}
}
