package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/apierr"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/common"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

const maxBodySize = 4 << 20

var ErrInvalidBaseURL = errors.New("invalid base URL")

// Options configure an HTTPClient. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	AuthScheme string
	// Transport is the underlying round tripper; http.DefaultTransport if nil.
	Transport http.RoundTripper
}

const (
	defaultTimeout    = 60 * time.Second
	defaultAuthScheme = "Bearer"
)

// HTTPClient talks JSON to the ChemTutor API. It holds no session state of
// its own: the token is read from the TokenSource on every request.
type HTTPClient struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
	log     logging.Logger
}

func NewHTTPClient(opts Options, tokens TokenSource, log logging.Logger) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	scheme := strings.TrimSpace(opts.AuthScheme)
	if scheme == "" {
		scheme = defaultAuthScheme
	}
	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &HTTPClient{
		baseURL: base,
		timeout: timeout,
		http: &http.Client{
			Transport: &authTransport{base: rt, tokens: tokens, scheme: scheme, log: log},
		},
		log: log,
	}, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var out models.Health
	if err := c.do(ctx, http.MethodGet, "health/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BalanceReaction sends input exactly as given.
func (c *HTTPClient) BalanceReaction(ctx context.Context, input string) (*models.BalanceResult, error) {
	var out models.BalanceResult
	if err := c.do(ctx, http.MethodPost, "reactions/balance/", models.BalanceRequest{Input: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AskQuestion(ctx context.Context, question, category string) (*models.Answer, error) {
	var out models.Answer
	if err := c.do(ctx, http.MethodPost, "qa/", models.QuestionRequest{Question: question, Category: category}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CorrectStatement(ctx context.Context, statement string) (*models.Correction, error) {
	var out models.Correction
	if err := c.do(ctx, http.MethodPost, "correction/", models.CorrectionRequest{Statement: statement}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	return c.session(ctx, "auth/register/", creds)
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	creds.Email = ""
	return c.session(ctx, "auth/login/", creds)
}

func (c *HTTPClient) session(ctx context.Context, path string, creds models.Credentials) (*models.Session, error) {
	var out models.Session
	if err := c.do(ctx, http.MethodPost, path, creds, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &apierr.Error{Kind: apierr.KindUnexpected, Message: "malformed response: missing token"}
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "auth/logout/", nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "auth/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "auth/profile/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.ProfileUpdateResult, error) {
	var out models.ProfileUpdateResult
	if err := c.do(ctx, http.MethodPut, "auth/profile/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodDelete, "auth/profile/", models.DeleteAccountRequest{Password: password}, nil)
}

// do performs one call under the client timeout. Non-2xx responses and 2xx
// bodies flagged as failures are classified; out is decoded only on success.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &apierr.Error{Kind: apierr.KindUnexpected, Message: fmt.Sprintf("encode request: %v", err), Err: err}
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return &apierr.Error{Kind: apierr.KindUnexpected, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	if in != nil {
		req.Header.Set(common.ContentTypeHeaderName, common.JSONContentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		e := apierr.Classify(apierr.Signal{Err: err})
		c.log.Warn(ctx, "api call failed", "method", method, "path", path, "kind", e.Kind.String(), "error", err)
		return e
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		e := apierr.Classify(apierr.Signal{Err: err})
		c.log.Warn(ctx, "api body read failed", "method", method, "path", path, "kind", e.Kind.String(), "error", err)
		return e
	}

	c.log.Debug(ctx, "api response", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 || apierr.ParseEnvelope(raw).Flagged() {
		e := apierr.Classify(apierr.Signal{StatusCode: resp.StatusCode, Body: raw})
		c.log.Info(ctx, "api call rejected", "method", method, "path", path, "status", resp.StatusCode, "kind", e.Kind.String())
		return e
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierr.Error{
			Kind:       apierr.KindUnexpected,
			Message:    fmt.Sprintf("malformed response from %s: %v", path, err),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
