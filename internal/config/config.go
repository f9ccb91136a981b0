package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Database   DatabaseConfig
	Embedding  EmbeddingConfig
	Fallback   FallbackConfig
	Thresholds ThresholdsConfig
}

type DatabaseConfig struct {
	Driver       string // "postgres" (default) or "mariadb"
	URL          string // PostgreSQL connection URL
	MariaDBDSN   string // MariaDB DSN (e.g., facegate:facegate@tcp(mariadb:3306)/facegate)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type EmbeddingConfig struct {
	URL string // embedding service base URL, defaults to http://localhost:8000
	Dim int    // expected face embedding dimension, defaults to 512
}

type FallbackConfig struct {
	CascadePath string // path to the pigo facefinder cascade, defaults to cascade/facefinder
}

// ThresholdsConfig holds similarity thresholds keyed by embedding family.
// Thresholds are a property of the (family, use case) pair: the remote
// model and the pixel fallback produce scores on different scales, and the
// duplicate check is stricter than recognition.
type ThresholdsConfig struct {
	Families map[string]FamilyThresholds `yaml:"families"`
}

type FamilyThresholds struct {
	Recognition float64 `yaml:"recognition"`
	Duplicate   float64 `yaml:"duplicate"`
}

// Recognition returns the recognition threshold for an embedding family.
// Unknown families get a threshold of 1.0, which can never be exceeded.
func (t *ThresholdsConfig) Recognition(family string) float64 {
	if f, ok := t.Families[family]; ok {
		return f.Recognition
	}
	return 1.0
}

// Duplicate returns the duplicate-guard threshold for an embedding family.
func (t *ThresholdsConfig) Duplicate(family string) float64 {
	if f, ok := t.Families[family]; ok {
		return f.Duplicate
	}
	return 1.0
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a float in (0, 1).
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f < 1 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var thresholds ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// Embedded file, so this should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	// Env overrides, e.g. THRESHOLD_INSIGHTFACE_RECOGNITION=0.55.
	for family, f := range thresholds.Families {
		prefix := "THRESHOLD_" + envKey(family)
		f.Recognition = envFloat(prefix+"_RECOGNITION", f.Recognition)
		f.Duplicate = envFloat(prefix+"_DUPLICATE", f.Duplicate)
		thresholds.Families[family] = f
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:       envDefault("DATABASE_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedding: EmbeddingConfig{
			URL: envDefault("EMBEDDING_URL", "http://localhost:8000"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Fallback: FallbackConfig{
			CascadePath: envDefault("PIGO_CASCADE_PATH", "cascade/facefinder"),
		},
		Thresholds: thresholds,
	}
}

// Validate checks invariants that cannot be expressed in the YAML itself.
func (c *Config) Validate() error {
	for family, f := range c.Thresholds.Families {
		if f.Duplicate > f.Recognition {
			return fmt.Errorf("family %q: duplicate threshold %.2f exceeds recognition threshold %.2f", family, f.Duplicate, f.Recognition)
		}
	}
	return nil
}

func envDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envKey(family string) string {
	out := make([]byte, 0, len(family))
	for i := 0; i < len(family); i++ {
		c := family[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
