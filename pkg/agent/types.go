package agent

import (
	"time"

	"github.com/yanlabs/farsight/pkg/farcaster"
)

// Option configures an Analyzer.
type Option func(*OptionHolder)

// WithFarcasterAPIKey sets the key for the hub gateway and aggregate APIs.
func WithFarcasterAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.farcasterAPIKey = key
	}
}

// WithGeminiAPIKey sets the Gemini API key.
func WithGeminiAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.geminiAPIKey = key
	}
}

// WithGeminiModel overrides the Gemini model.
func WithGeminiModel(model string) Option {
	return func(o *OptionHolder) {
		o.geminiModel = model
	}
}

// WithSearchAPIKey sets the external search API key.
func WithSearchAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.searchAPIKey = key
	}
}

// WithCacheDir enables disk persistence of the HTTP cache.
func WithCacheDir(dir string) Option {
	return func(o *OptionHolder) {
		o.cacheDir = dir
	}
}

// WithNoCache disables all response caching.
func WithNoCache() Option {
	return func(o *OptionHolder) {
		o.noCache = true
	}
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	farcasterAPIKey string
	geminiAPIKey    string
	geminiModel     string
	searchAPIKey    string
	cacheDir        string
	noCache         bool
}

// Fan is a hydrated follower entry ranked by reach.
type Fan struct {
	FID           uint64 `json:"fid"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name,omitempty"`
	FollowerCount int    `json:"follower_count"`
}

// Catalyst echoes the cast chosen as the subject of deeper analysis.
type Catalyst struct {
	Hash           string `json:"hash"`
	Text           string `json:"text"`
	AuthorFID      uint64 `json:"author_fid"`
	AuthorUsername string `json:"author_username"`
}

// OptimalTimeReport is the response of the optimal-casting-time analysis.
type OptimalTimeReport struct {
	FID           string      `json:"fid"`
	GeneratedAt   time.Time   `json:"generated_at"`
	CastCount     int         `json:"cast_count"`
	HourTally     map[int]int `json:"hour_tally_utc"`
	DayTally      map[int]int `json:"day_tally_utc"`
	PeakHours     []int       `json:"peak_hours_utc,omitempty"`
	PeakHourCount int         `json:"peak_hour_count,omitempty"`
	PeakDays      []int       `json:"peak_days,omitempty"`
	PeakDayCount  int         `json:"peak_day_count,omitempty"`
	Narrative     string      `json:"narrative"`
	Errors        []string    `json:"errors"`
}

// TopFansReport ranks a user's followers by reach.
type TopFansReport struct {
	FID         string    `json:"fid"`
	GeneratedAt time.Time `json:"generated_at"`
	Fans        []Fan     `json:"fans"`
	Narrative   string    `json:"narrative"`
	Errors      []string  `json:"errors"`
}

// TrendingReport analyzes the current top trending conversation.
type TrendingReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Catalyst    *Catalyst `json:"catalyst,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	Narrative   string    `json:"narrative"`
	Errors      []string  `json:"errors"`
}

// PersonaReport summarizes a user's online persona.
type PersonaReport struct {
	FID         string    `json:"fid"`
	GeneratedAt time.Time `json:"generated_at"`
	Username    string    `json:"username,omitempty"`
	Narrative   string    `json:"narrative"`
	Errors      []string  `json:"errors"`
}

// WeeklyReport combines audience growth with conversation starters.
type WeeklyReport struct {
	FID          string    `json:"fid"`
	GeneratedAt  time.Time `json:"generated_at"`
	NewFollowers []Fan     `json:"new_followers"`
	Catalyst     *Catalyst `json:"catalyst,omitempty"`
	Narrative    string    `json:"narrative"`
	Errors       []string  `json:"errors"`
}

// CastIdeasReport carries suggested casts for the user.
type CastIdeasReport struct {
	FID         string    `json:"fid"`
	GeneratedAt time.Time `json:"generated_at"`
	Topic       string    `json:"topic,omitempty"`
	Ideas       []string  `json:"ideas"`
	Errors      []string  `json:"errors"`
}

func catalystFrom(cast farcaster.TrendingCast) *Catalyst {
	return &Catalyst{
		Hash:           cast.Hash,
		Text:           cast.Text,
		AuthorFID:      cast.AuthorFID,
		AuthorUsername: cast.AuthorUsername,
	}
}
