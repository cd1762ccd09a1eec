// Package client contains the ChemTutor API gateway and local database
// bootstrap for the CLI.
//
// # Overview
//
//  1. Client is the API contract: health, reaction balancing, Q&A,
//     statement correction and the account endpoints.
//  2. HTTPClient implements it over JSON/HTTP. A RoundTripper injects the
//     stored token as "Authorization: <scheme> <token>" together with a
//     per-request X-Request-ID. Each call runs under its own timeout and is
//     never retried.
//  3. InitDatabase and RunMigrations open the SQLite file and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns an *apierr.Error. Match categories with
// errors.Is against apierr.ErrTimeout, apierr.ErrUnavailable,
// apierr.ErrRejected, apierr.ErrUnauthorized and apierr.ErrUnexpected.
package client
