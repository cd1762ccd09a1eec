package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/chemtutor/internal/netx"
)

// Signal is everything known about a finished call: the transport error (if
// no response arrived), or the status code and raw body of the response.
type Signal struct {
	Err        error
	StatusCode int
	Body       []byte
}

// Envelope is the error shape shared by all endpoints.
type Envelope struct {
	Success   *bool  `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Flagged reports whether a 2xx body signals an application-level failure.
func (e Envelope) Flagged() bool {
	return strings.TrimSpace(e.Error) != "" || (e.Success != nil && !*e.Success)
}

// ParseEnvelope decodes the error fields of body. Bodies that are not JSON
// objects yield a zero Envelope.
func ParseEnvelope(body []byte) Envelope {
	var env Envelope
	_ = json.Unmarshal(body, &env)
	return env
}

var authCodes = map[string]struct{}{
	"AUTH_EXPIRED":      {},
	"AUTH_REQUIRED":     {},
	"AUTH_INVALID":      {},
	"TOKEN_EXPIRED":     {},
	"TOKEN_INVALID":     {},
	"NOT_AUTHENTICATED": {},
}

const snippetLimit = 200

// Classify maps a Signal to exactly one category. It has no side effects.
//
// Order: timeout, other transport failure, authentication rejection,
// application error payload, anything else.
func Classify(s Signal) *Error {
	if s.Err != nil {
		switch {
		case netx.IsTimeout(s.Err):
			return &Error{Kind: KindTimeout, Message: "the server took too long to respond", Err: s.Err}
		case netx.IsCanceled(s.Err):
			return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("request canceled: %v", s.Err), Err: s.Err}
		case netx.IsUnreachable(s.Err):
			return &Error{Kind: KindNetworkUnreachable, Message: "cannot connect to the server", Err: s.Err}
		default:
			return &Error{Kind: KindNetworkUnreachable, Message: fmt.Sprintf("request failed: %v", s.Err), Err: s.Err}
		}
	}

	env := ParseEnvelope(s.Body)
	code := strings.TrimSpace(env.ErrorCode)

	if s.StatusCode == http.StatusUnauthorized || isAuthCode(code) {
		msg := firstNonEmpty(env.Error, env.Detail, "authentication required")
		return &Error{Kind: KindUnauthenticated, Message: msg, Code: code, StatusCode: s.StatusCode}
	}

	if strings.TrimSpace(env.Error) != "" {
		return &Error{
			Kind:       KindServerRejected,
			Message:    env.Error,
			Details:    detailsString(env.Details),
			Code:       env.ErrorCode,
			StatusCode: s.StatusCode,
		}
	}

	if isSuccess(s.StatusCode) && env.Success != nil && !*env.Success {
		return &Error{
			Kind:       KindServerRejected,
			Message:    "request failed",
			Details:    detailsString(env.Details),
			Code:       env.ErrorCode,
			StatusCode: s.StatusCode,
		}
	}

	return &Error{Kind: KindUnexpected, Message: unexpectedMessage(s.StatusCode, env, s.Body), StatusCode: s.StatusCode}
}

func isAuthCode(code string) bool {
	_, ok := authCodes[strings.ToUpper(code)]
	return ok
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func unexpectedMessage(status int, env Envelope, body []byte) string {
	prefix := "unexpected response"
	if status != 0 {
		prefix = fmt.Sprintf("unexpected response: %d %s", status, http.StatusText(status))
	}

	if env.Detail != "" {
		return prefix + ": " + env.Detail
	}
	if snippet := bodySnippet(body); snippet != "" {
		return prefix + ": " + snippet
	}
	return prefix
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= snippetLimit {
		return s
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// detailsString keeps string details verbatim and re-encodes structured
// ones (DRF field errors) as compact JSON.
func detailsString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprint(d)
		}
		return string(b)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
