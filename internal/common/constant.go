// Package common contains shared constants and small helpers used across
// ChemTutor client components.
package common

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeHeaderName   = "Content-Type"
	AcceptHeaderName        = "Accept"
)

// JSONContentType is the only content type spoken with the remote API.
const JSONContentType = "application/json"

// Durable storage keys. Each key holds one self-contained record.
const (
	CredentialKeyPrefix = "credential."

	CredentialTokenKey = CredentialKeyPrefix + "token"
	CredentialUserKey  = CredentialKeyPrefix + "user"
	HistoryKey         = "history.questions"
)

// RecordVersion is the version tag written into every persisted JSON record.
const RecordVersion = 1
