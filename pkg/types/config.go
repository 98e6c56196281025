package types

import "time"

// HTTPConfig holds shared HTTP settings used by the remote source clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibcheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the remote bibliographic sources.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableOpenAlex controls whether the OpenAlex source is queried.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// EnableOpenReview controls whether the OpenReview source is queried.
	EnableOpenReview bool `json:"enable_openreview" yaml:"enable_openreview"`

	// EnableOpenLibrary controls whether the Open Library source is queried.
	EnableOpenLibrary bool `json:"enable_openlibrary" yaml:"enable_openlibrary"`

	// OpenAlexMailto is sent as the mailto parameter for polite pool access.
	OpenAlexMailto string `json:"openalex_mailto,omitempty" yaml:"openalex_mailto,omitempty"`

	// MaxCandidates caps how many candidates a title search requests (default 5).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// InterSourceDelay is the pause between consecutive source lookups for
	// one entry (default 0). Lookups are sequential, never fanned out.
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`

	// RequestsPerSecond bounds the per-source request rate (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds settings for the on-disk lookup cache.
type CacheConfig struct {
	// Dir is the cache directory (contains lookups.db).
	Dir string `json:"dir" yaml:"dir"`

	// TTL is the fixed time-to-live for cached lookups (default 168h).
	// There is no other eviction policy.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Disabled bypasses the cache entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// ValidateConfig groups the settings for a validation run.
type ValidateConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
}
