// Package config loads the indexer's runtime configuration from environment
// variables, following the same accessor style the rest of the codebase's
// ancestry uses: typed getters with defaults, and Must* variants that panic
// on a missing required value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// EnvConfig reads configuration from environment variables, optionally
// prefixed.
type EnvConfig struct {
	prefix string
}

// NewEnvConfig creates an environment loader with an optional key prefix.
func NewEnvConfig(prefix string) *EnvConfig {
	return &EnvConfig{prefix: prefix}
}

// GetString retrieves a string value, falling back to defaultValue.
func (ec *EnvConfig) GetString(key, defaultValue string) string {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		return value
	}
	return defaultValue
}

// MustGetString retrieves a required string value or panics.
func (ec *EnvConfig) MustGetString(key string) string {
	fullKey := ec.buildKey(key)
	value := os.Getenv(fullKey)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s not set", fullKey))
	}
	return value
}

// GetInt retrieves an integer value, falling back to defaultValue.
func (ec *EnvConfig) GetInt(key string, defaultValue int) int {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value, falling back to defaultValue.
func (ec *EnvConfig) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration value, falling back to defaultValue.
func (ec *EnvConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (ec *EnvConfig) buildKey(key string) string {
	if ec.prefix != "" {
		return ec.prefix + "_" + key
	}
	return key
}

// Neo4jConfig holds connection settings for the graph store.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

// ChainConfig holds the blockchain event source endpoint.
type ChainConfig struct {
	SubstreamsEndpointURL string
}

// IpfsConfig holds settings for resolving content-addressed edit blobs.
type IpfsConfig struct {
	GatewayURL   string
	MaxFanout    int
	RetryMax     int
	RetryCapSecs int
}

// CacheConfig holds the Redis-compatible cache connection.
type CacheConfig struct {
	Servers []string
}

// IngestConfig tunes the ingestion pipeline's concurrency and buffering.
type IngestConfig struct {
	BlockBufferSize int
	StoreRetryMax   int
}

// Config is the fully loaded indexer configuration.
type Config struct {
	Neo4j  Neo4jConfig
	Chain  ChainConfig
	Ipfs   IpfsConfig
	Cache  CacheConfig
	Ingest IngestConfig

	// GeminiAPIKey authenticates the embedding provider used to produce the
	// vectors stored alongside entity properties for semantic search.
	GeminiAPIKey string

	// SpacesBlacklist holds space ids excluded from ingestion entirely.
	SpacesBlacklist map[uuid.UUID]struct{}
}

// Load reads Config from the environment. prefix, when non-empty, is
// prepended to every variable name (e.g. "INDEXER" -> "INDEXER_NEO4J_URI").
func Load(prefix string) (*Config, error) {
	env := NewEnvConfig(prefix)

	cfg := &Config{
		Neo4j: Neo4jConfig{
			URI:      env.GetString("NEO4J_URI", "bolt://localhost:7687"),
			User:     env.GetString("NEO4J_USER", "neo4j"),
			Password: env.GetString("NEO4J_PASS", ""),
		},
		Chain: ChainConfig{
			SubstreamsEndpointURL: env.GetString("SUBSTREAMS_ENDPOINT_URL", ""),
		},
		Ipfs: IpfsConfig{
			GatewayURL:   env.GetString("IPFS_GATEWAY_URL", "https://ipfs.network.thegraph.com"),
			MaxFanout:    env.GetInt("IPFS_MAX_FANOUT", 10),
			RetryMax:     env.GetInt("IPFS_RETRY_MAX", 5),
			RetryCapSecs: env.GetInt("IPFS_RETRY_CAP_SECS", 30),
		},
		Cache: CacheConfig{
			Servers: splitNonEmpty(env.GetString("MEMCACHE_SERVERS", "")),
		},
		Ingest: IngestConfig{
			BlockBufferSize: env.GetInt("INGEST_BLOCK_BUFFER_SIZE", 32),
			StoreRetryMax:   env.GetInt("INGEST_STORE_RETRY_MAX", 3),
		},
		GeminiAPIKey:    env.GetString("GEMINI_API_KEY", ""),
		SpacesBlacklist: map[uuid.UUID]struct{}{},
	}

	blacklistPath := env.GetString("SPACES_BLACKLIST_FILE", "")
	if blacklistPath != "" {
		blacklist, err := loadSpacesBlacklist(blacklistPath)
		if err != nil {
			return nil, fmt.Errorf("loading spaces blacklist: %w", err)
		}
		cfg.SpacesBlacklist = blacklist
	}

	return cfg, nil
}

// loadSpacesBlacklist reads a YAML file of the form `spaces: [<uuid>, ...]`
// and returns the set of excluded space ids.
func loadSpacesBlacklist(path string) (map[uuid.UUID]struct{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Spaces []string `yaml:"spaces"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	blacklist := make(map[uuid.UUID]struct{}, len(doc.Spaces))
	for _, s := range doc.Spaces {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid space id %q in %s: %w", s, path, err)
		}
		blacklist[id] = struct{}{}
	}
	return blacklist, nil
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
