package identity

import (
	"context"
	"testing"
	"time"

	"poolledger/internal/models"

	"github.com/rs/zerolog"
)

type stubProfileStore struct {
	byID       map[string]*models.Profile
	byTelegram map[int64]*models.Profile
}

func (s stubProfileStore) GetByID(_ context.Context, profileID string) (*models.Profile, error) {
	return s.byID[profileID], nil
}

func (s stubProfileStore) GetByTelegramID(_ context.Context, telegramID int64) (*models.Profile, error) {
	return s.byTelegram[telegramID], nil
}

func TestResolveProfileBearerPath(t *testing.T) {
	sessions := NewSessionVerifier("secret")
	token, err := sessions.IssueSession("prof-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	profiles := stubProfileStore{byID: map[string]*models.Profile{
		"prof-1": {ID: "prof-1", Role: models.RoleUser},
	}}
	resolver := NewResolver(profiles, sessions, NewPayloadVerifier(testBotToken, time.Hour), zerolog.Nop())

	profile, err := resolver.ResolveProfile(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil || profile.ID != "prof-1" {
		t.Fatalf("expected prof-1, got %+v", profile)
	}
}

func TestResolveProfileFallsThroughToPayload(t *testing.T) {
	telegramID := int64(4242)
	profiles := stubProfileStore{byTelegram: map[int64]*models.Profile{
		telegramID: {ID: "prof-2", Role: models.RoleUser, TelegramID: &telegramID},
	}}
	resolver := NewResolver(profiles, NewSessionVerifier("secret"),
		NewPayloadVerifier(testBotToken, time.Hour), zerolog.Nop())

	initData := freshInitData(t, testBotToken, telegramID, time.Now())
	profile, err := resolver.ResolveProfile(context.Background(), "not-a-jwt", initData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil || profile.ID != "prof-2" {
		t.Fatalf("expected prof-2 via payload path, got %+v", profile)
	}
}

func TestResolveProfileUnresolvedIsNil(t *testing.T) {
	resolver := NewResolver(stubProfileStore{}, NewSessionVerifier("secret"),
		NewPayloadVerifier(testBotToken, time.Hour), zerolog.Nop())
	profile, err := resolver.ResolveProfile(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unresolved caller must not be an error, got %v", err)
	}
	if profile != nil {
		t.Fatalf("expected nil profile, got %+v", profile)
	}
}

func TestResolveProfileExpiredBearerFailsClosed(t *testing.T) {
	sessions := NewSessionVerifier("secret")
	token, err := sessions.IssueSession("prof-1", -time.Minute)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	profiles := stubProfileStore{byID: map[string]*models.Profile{
		"prof-1": {ID: "prof-1"},
	}}
	resolver := NewResolver(profiles, sessions, NewPayloadVerifier(testBotToken, time.Hour), zerolog.Nop())
	profile, err := resolver.ResolveProfile(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile != nil {
		t.Fatalf("expired token must not resolve, got %+v", profile)
	}
}

func TestRequireAdmin(t *testing.T) {
	profiles := stubProfileStore{byID: map[string]*models.Profile{
		"prof-admin": {ID: "prof-admin", Role: models.RoleAdmin},
		"prof-user":  {ID: "prof-user", Role: models.RoleUser},
	}}
	resolver := NewResolver(profiles, NewSessionVerifier("secret"),
		NewPayloadVerifier(testBotToken, time.Hour), zerolog.Nop())

	cases := []struct {
		profileID string
		want      bool
	}{
		{"prof-admin", true},
		{"prof-user", false},
		{"prof-missing", false},
	}
	for _, tc := range cases {
		got, err := resolver.RequireAdmin(context.Background(), tc.profileID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("RequireAdmin(%s) = %v, want %v", tc.profileID, got, tc.want)
		}
	}
}
