package editor

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultLoginURL      = "/login"
	defaultListingURL    = "/doctor/blogs"
	defaultDraftTTL      = 24 * time.Hour
	defaultSubmitLockTTL = 2 * time.Minute
)

// Settings are the editor knobs read from the environment.
type Settings struct {
	LoginURL       string
	ListingURL     string
	JWTSecret      string
	DraftTTL       time.Duration
	SubmitLockTTL  time.Duration
	TagSuggestions []string
}

func SettingsFromEnv() (Settings, error) {
	s := Settings{
		LoginURL:       envOr("LOGIN_URL", defaultLoginURL),
		ListingURL:     envOr("LISTING_URL", defaultListingURL),
		JWTSecret:      os.Getenv("BLOG_JWT_SECRET"),
		DraftTTL:       defaultDraftTTL,
		SubmitLockTTL:  defaultSubmitLockTTL,
		TagSuggestions: ParseSuggestions(os.Getenv("EDITOR_TAG_SUGGESTIONS")),
	}

	var err error
	if s.DraftTTL, err = durationEnv("DRAFT_TTL", defaultDraftTTL); err != nil {
		return Settings{}, err
	}
	if s.SubmitLockTTL, err = durationEnv("SUBMIT_LOCK_TTL", defaultSubmitLockTTL); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}
