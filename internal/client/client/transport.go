package client

import (
	"net/http"

	"github.com/dmitrijs2005/chemtutor/internal/common"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
	"github.com/google/uuid"
)

// authTransport stamps every outgoing request with the JSON accept header, a
// fresh request id and, when a token is stored, the Authorization header.
// The token is looked up per request, so login and logout take effect on the
// very next call.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	scheme string
	log    logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	r := req.Clone(ctx)

	requestID := uuid.NewString()
	r.Header.Set(common.RequestIDHeaderName, requestID)
	r.Header.Set(common.AcceptHeaderName, common.JSONContentType)
	r.Header.Del(common.AuthorizationHeaderName)

	authenticated := false
	if t.tokens != nil {
		if token, ok := t.tokens.Token(ctx); ok {
			r.Header.Set(common.AuthorizationHeaderName, t.scheme+" "+token)
			authenticated = true
		}
	}

	t.log.Debug(ctx, "api request", "method", r.Method, "path", r.URL.Path, "request_id", requestID, "authenticated", authenticated)

	return t.base.RoundTrip(r)
}
