package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ericogr/mtcg/internal/engine"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/keys"
)

// DefaultPath is used when MTCG_CONFIG is not set.
const DefaultPath = "./mtcg.yaml"

type ServerConfig struct {
	Address       string        `yaml:"address" env:"MTCG_ADDR"`
	SessionSecret string        `yaml:"session_secret" env:"MTCG_SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"MTCG_SESSION_TTL"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"MTCG_DB_DRIVER"`
	DSN    string `yaml:"dsn" env:"MTCG_DB_DSN"`
}

type BattleConfig struct {
	// Seed for the shared random source. Zero picks a random seed.
	Seed           int64         `yaml:"seed" env:"MTCG_BATTLE_SEED"`
	StoreTimeout   time.Duration `yaml:"store_timeout" env:"MTCG_STORE_TIMEOUT"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"MTCG_SWEEP_INTERVAL"`
	AbandonedAfter time.Duration `yaml:"abandoned_after" env:"MTCG_ABANDONED_AFTER"`
}

type EconomyConfig struct {
	StartCoins  int `yaml:"start_coins"`
	StartElo    int `yaml:"start_elo"`
	PackageCost int `yaml:"package_cost"`
	PackageSize int `yaml:"package_size"`
}

// ArchiveConfig points at an S3 compatible bucket. An empty bucket disables archiving.
type ArchiveConfig struct {
	Bucket          string `yaml:"bucket" env:"MTCG_ARCHIVE_BUCKET"`
	Region          string `yaml:"region" env:"MTCG_ARCHIVE_REGION"`
	Endpoint        string `yaml:"endpoint" env:"MTCG_ARCHIVE_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"MTCG_ARCHIVE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MTCG_ARCHIVE_SECRET_ACCESS_KEY"`
	Prefix          string `yaml:"prefix"`
}

type LogConfig struct {
	Debug bool `yaml:"debug" env:"MTCG_DEBUG"`
}

// CardEntry is one mintable card of the catalog. Traits may be omitted, in
// which case they are derived from the name.
type CardEntry struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Element string   `yaml:"element"`
	Damage  int      `yaml:"damage"`
	Traits  []string `yaml:"traits"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Battle   BattleConfig   `yaml:"battle"`
	Economy  EconomyConfig  `yaml:"economy"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Log      LogConfig      `yaml:"log"`
	Cards    []CardEntry    `yaml:"cards"`

	templates []game.CardTemplate
}

// Templates returns the validated card catalog.
func (c *Config) Templates() []game.CardTemplate { return c.templates }

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":10001"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./data/mtcg.db"
	}
	if c.Battle.StoreTimeout == 0 {
		c.Battle.StoreTimeout = 5 * time.Second
	}
	if c.Battle.SweepInterval == 0 {
		c.Battle.SweepInterval = time.Minute
	}
	if c.Battle.AbandonedAfter == 0 {
		c.Battle.AbandonedAfter = 10 * time.Minute
	}
	if c.Economy.StartCoins == 0 {
		c.Economy.StartCoins = 20
	}
	if c.Economy.StartElo == 0 {
		c.Economy.StartElo = 100
	}
	if c.Economy.PackageCost == 0 {
		c.Economy.PackageCost = 5
	}
	if c.Economy.PackageSize == 0 {
		c.Economy.PackageSize = 5
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "battles/"
	}
}

// Load reads the YAML file at path, applies defaults and MTCG_* environment
// overrides, and validates the card catalog.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Server.SessionSecret) == "" {
		return fmt.Errorf("server.session_secret is required (or set MTCG_SESSION_SECRET)")
	}
	if c.Economy.PackageCost < 0 || c.Economy.PackageSize <= 0 {
		return fmt.Errorf("economy: package_cost must be >= 0 and package_size > 0")
	}
	if len(c.Cards) == 0 {
		return fmt.Errorf("cards is empty (provide a 'cards' list)")
	}

	// Cross-entry validation: unique names (by canonical key), known kinds,
	// elements and traits, non-negative damage.
	names := make(map[string]struct{}, len(c.Cards))
	out := make([]game.CardTemplate, 0, len(c.Cards))
	for _, e := range c.Cards {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("card entry missing 'name'")
		}
		ln := keys.CardName(e.Name)
		if _, exists := names[ln]; exists {
			return fmt.Errorf("duplicate card name '%s'", e.Name)
		}
		names[ln] = struct{}{}

		kind, err := game.ParseKind(e.Kind)
		if err != nil {
			return fmt.Errorf("card '%s': %w", e.Name, err)
		}
		element, err := game.ParseElement(e.Element)
		if err != nil {
			return fmt.Errorf("card '%s': %w", e.Name, err)
		}
		if e.Damage < 0 {
			return fmt.Errorf("card '%s': damage must not be negative", e.Name)
		}

		traits := engine.TraitsFromName(e.Name, kind)
		if e.Traits != nil {
			traits = 0
			for _, name := range e.Traits {
				t, err := game.ParseTrait(name)
				if err != nil {
					return fmt.Errorf("card '%s': %w", e.Name, err)
				}
				traits |= game.NewTraits(t)
			}
		}
		out = append(out, game.CardTemplate{
			Name:    strings.TrimSpace(e.Name),
			Kind:    kind,
			Element: element,
			Damage:  e.Damage,
			Traits:  traits,
		})
	}
	c.templates = out
	return nil
}
