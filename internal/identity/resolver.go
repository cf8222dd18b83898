package identity

import (
	"context"

	"poolledger/internal/models"

	"github.com/rs/zerolog"
)

type ProfileStore interface {
	GetByID(ctx context.Context, profileID string) (*models.Profile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error)
}

type bearerVerifier interface {
	VerifyBearerSession(token string) (string, error)
}

type payloadVerifier interface {
	VerifySignedPayload(initData string) (int64, error)
}

// Resolver maps inbound credentials to a profile. Two paths are tried in
// order: a bearer session token, then a signed mini-app payload. Verification
// failures are logged and treated as a failed path, never as a fatal error;
// an unresolvable caller is an ordinary negative result.
type Resolver struct {
	profiles ProfileStore
	sessions bearerVerifier
	payloads payloadVerifier
	log      zerolog.Logger
}

func NewResolver(profiles ProfileStore, sessions bearerVerifier, payloads payloadVerifier, log zerolog.Logger) *Resolver {
	return &Resolver{profiles: profiles, sessions: sessions, payloads: payloads, log: log}
}

// ResolveProfile returns the caller's profile, or nil when neither credential
// path resolves one.
func (r *Resolver) ResolveProfile(ctx context.Context, bearerToken, initData string) (*models.Profile, error) {
	if bearerToken != "" {
		subjectID, err := r.sessions.VerifyBearerSession(bearerToken)
		if err != nil {
			r.log.Debug().Err(err).Msg("bearer session verification failed")
		} else {
			profile, err := r.profiles.GetByID(ctx, subjectID)
			if err != nil {
				return nil, err
			}
			if profile != nil {
				return profile, nil
			}
		}
	}
	if initData != "" {
		telegramID, err := r.payloads.VerifySignedPayload(initData)
		if err != nil {
			r.log.Debug().Err(err).Msg("signed payload verification failed")
		} else {
			profile, err := r.profiles.GetByTelegramID(ctx, telegramID)
			if err != nil {
				return nil, err
			}
			if profile != nil {
				return profile, nil
			}
		}
	}
	return nil, nil
}

// RequireAdmin reports whether the profile exists and holds the admin role.
func (r *Resolver) RequireAdmin(ctx context.Context, profileID string) (bool, error) {
	profile, err := r.profiles.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	return profile != nil && profile.Role == models.RoleAdmin, nil
}
