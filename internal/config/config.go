package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"mailtriage/internal/model"
)

// EnrichConfig holds settings for the optional enrichment collaborators.
type EnrichConfig struct {
	TikaEnabled      bool
	TikaEndpoint     string
	TikaContentTypes []string

	ReputationEnabled  bool
	ReputationEndpoint string
	ReputationAPIKey   string
}

// FilterConfig holds the content-type filters. Blacklist entries drop or
// prune records during parsing; Remove entries are applied afterwards to the
// assembled collection.
type FilterConfig struct {
	BlacklistContentTypes []string
	RemoveContentTypes    []string
}

// WhitelistConfig points at the YAML file declaring URL whitelist sources
// and controls how often the in-memory whitelist goes stale.
type WhitelistConfig struct {
	File               string
	ReloadIntervalSecs int
}

// AppConfig is the immutable configuration snapshot handed to the engine.
// A reload produces a new snapshot; fields are never mutated in place.
type AppConfig struct {
	MetricsAddr string
	Enrich      EnrichConfig
	Filter      FilterConfig
	Whitelist   WhitelistConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over .env values.
func Load() *AppConfig {
	return &AppConfig{
		MetricsAddr: getEnv("METRICS_ADDR", ""),
		Enrich: EnrichConfig{
			TikaEnabled:        getEnvBool("TIKA_ENABLED", false),
			TikaEndpoint:       getEnv("TIKA_ENDPOINT", "http://localhost:9998"),
			TikaContentTypes:   getEnvList("TIKA_CONTENT_TYPES", "application/zip,application/pdf"),
			ReputationEnabled:  getEnvBool("REPUTATION_ENABLED", false),
			ReputationEndpoint: getEnv("REPUTATION_ENDPOINT", "https://www.virustotal.com/vtapi/v2"),
			ReputationAPIKey:   getEnv("REPUTATION_API_KEY", ""),
		},
		Filter: FilterConfig{
			BlacklistContentTypes: getEnvList("BLACKLIST_CONTENT_TYPES", ""),
			RemoveContentTypes:    getEnvList("REMOVE_CONTENT_TYPES", ""),
		},
		Whitelist: WhitelistConfig{
			File:               getEnv("WHITELISTS_FILE", ""),
			ReloadIntervalSecs: getEnvInt("WHITELIST_RELOAD_SECS", 300),
		},
	}
}

// whitelistFile mirrors the on-disk YAML shape:
//
//	whitelists:
//	  alexa:
//	    path: /etc/mailtriage/alexa.yaml
//	    expiry: 2026-06-28T10:30:00Z
type whitelistFile struct {
	Whitelists map[string]struct {
		Path   string `yaml:"path"`
		Expiry string `yaml:"expiry"`
	} `yaml:"whitelists"`
}

// LoadWhitelistEntries parses the whitelist declaration file. Expiry
// timestamps are parsed leniently; an unparseable expiry is a configuration
// error, not an expired entry.
func LoadWhitelistEntries(path string) ([]model.WhitelistEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whitelist file: %w", err)
	}

	var f whitelistFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse whitelist file: %w", err)
	}

	entries := make([]model.WhitelistEntry, 0, len(f.Whitelists))
	for key, decl := range f.Whitelists {
		entry := model.WhitelistEntry{SourceKey: key, Path: decl.Path}
		if decl.Expiry != "" {
			ts, err := dateparse.ParseAny(decl.Expiry)
			if err != nil {
				return nil, fmt.Errorf("whitelist %q: bad expiry %q: %w", key, decl.Expiry, err)
			}
			ts = ts.UTC()
			entry.Expiry = &ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReloadInterval returns the whitelist staleness interval as a duration.
func (c WhitelistConfig) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalSecs) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key, def string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
