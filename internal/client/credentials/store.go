// Package credentials keeps the signed-in session (token plus user snapshot)
// in the local record store. Token and user are always written and removed
// together, so a reader never sees one without the other.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/client/repositories/records"
	"github.com/dmitrijs2005/chemtutor/internal/common"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyToken = errors.New("token must not be empty")

// Credential is an authenticated session.
type Credential struct {
	Token string
	User  *models.User
}

type userRecord struct {
	Version int          `json:"version"`
	User    *models.User `json:"user"`
}

type Store struct {
	mu   sync.Mutex
	repo records.Repository
	log  logging.Logger
}

func NewStore(repo records.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// Save stores a fresh session after login or registration.
func (s *Store) Save(ctx context.Context, token string, user *models.User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, token, user, false)
}

// Refresh swaps in a reissued token, e.g. after a password change. A nil
// user keeps the stored snapshot.
func (s *Store) Refresh(ctx context.Context, token string, user *models.User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, token, user, user == nil)
}

func (s *Store) write(ctx context.Context, token string, user *models.User, keepUser bool) error {
	var userValue []byte
	if !keepUser && user != nil {
		b, err := json.Marshal(userRecord{Version: common.RecordVersion, User: user})
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		userValue = b
	}

	err := s.repo.Atomic(ctx, func(ctx context.Context, repo records.Repository) error {
		if err := repo.Set(ctx, common.CredentialTokenKey, []byte(token)); err != nil {
			return err
		}
		if keepUser {
			return nil
		}
		if userValue == nil {
			return repo.Delete(ctx, common.CredentialUserKey)
		}
		return repo.Set(ctx, common.CredentialUserKey, userValue)
	})
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear removes the session, including any other credential.* record left
// by an older client. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) error {
	err := s.repo.Atomic(ctx, func(ctx context.Context, repo records.Repository) error {
		all, err := repo.List(ctx)
		if err != nil {
			return err
		}
		for key := range all {
			if !strings.HasPrefix(key, common.CredentialKeyPrefix) {
				continue
			}
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Token returns the stored token. Storage failures read as "no token".
func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token(ctx)
}

func (s *Store) token(ctx context.Context) (string, bool) {
	b, err := s.repo.Get(ctx, common.CredentialTokenKey)
	if err != nil {
		s.log.Warn(ctx, "credential read failed", "error", err)
		return "", false
	}
	token := string(b)
	if strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// User returns the stored user snapshot. A malformed record is treated as a
// corrupt session and the whole credential is dropped.
func (s *Store) User(ctx context.Context) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user(ctx)
}

func (s *Store) user(ctx context.Context) (*models.User, bool) {
	b, err := s.repo.Get(ctx, common.CredentialUserKey)
	if err != nil {
		s.log.Warn(ctx, "credential read failed", "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}

	u, err := decodeUser(b)
	if err != nil {
		s.log.Warn(ctx, "stored user is malformed, dropping credential", "error", err)
		if cerr := s.clear(ctx); cerr != nil {
			s.log.Error(ctx, "failed to drop malformed credential", "error", cerr)
		}
		return nil, false
	}
	return u, true
}

// decodeUser accepts the versioned record and a bare user object.
func decodeUser(b []byte) (*models.User, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	if _, versioned := raw["version"]; versioned {
		var rec userRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, err
		}
		if rec.Version != common.RecordVersion {
			return nil, fmt.Errorf("unsupported user record version %d", rec.Version)
		}
		if rec.User == nil || rec.User.Username == "" {
			return nil, errors.New("user record has no username")
		}
		return rec.User, nil
	}

	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	if u.Username == "" {
		return nil, errors.New("user record has no username")
	}
	return &u, nil
}

// Current returns the authenticated session. It requires a token; the user
// snapshot may be missing.
func (s *Store) Current(ctx context.Context) (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.token(ctx)
	if !ok {
		return Credential{}, false
	}
	user, _ := s.user(ctx)
	if _, still := s.token(ctx); !still {
		return Credential{}, false
	}
	return Credential{Token: token, User: user}, true
}

// ExpiresAt reads the "exp" claim of a JWT without verifying it. Opaque
// tokens report no expiry. The result is advisory only.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
