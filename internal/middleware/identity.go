package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"poolledger/internal/models"
)

type contextKey string

const profileKey contextKey = "profile"

func ProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*models.Profile)
	return profile, ok
}

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, bearerToken, initData string) (*models.Profile, error)
}

// Identity authenticates the request through the resolver's credential paths:
// a bearer token from the Authorization header, or a signed mini-app payload
// carried in the JSON body as init_data. The body is restored for downstream
// handlers after the peek.
func Identity(resolver ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := bearerToken(r)
			initData, restored := peekInitData(r)
			if restored != nil {
				r.Body = restored
			}
			profile, err := resolver.ResolveProfile(r.Context(), bearer, initData)
			if err != nil {
				http.Error(w, "unable to resolve identity", http.StatusInternalServerError)
				return
			}
			if profile == nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), profileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func peekInitData(r *http.Request) (string, io.ReadCloser) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	restored := io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return "", restored
	}
	var payload struct {
		InitData string `json:"init_data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", restored
	}
	return payload.InitData, restored
}
