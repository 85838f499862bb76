package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ReservationConfig holds the booking flow settings.
type ReservationConfig struct {
	Timezone        string `toml:"timezone"`
	DurationHours   int    `toml:"duration_hours"`
	DefaultPassword string `toml:"default_password"`
	DefaultRCON     string `toml:"default_rcon"`
	GraceHours      int    `toml:"grace_hours"`
	SweepHours      int    `toml:"sweep_hours"`
}

// MapsConfig holds the map catalog and the server config families keyed by
// map name prefix.
type MapsConfig struct {
	Available  []string `toml:"available"`
	Config5CP  string   `toml:"config_5cp"`
	ConfigKOTH string   `toml:"config_koth"`
}

// FeatureConfig holds user-facing feature configurations.
// These are non-sensitive settings that customize bot behavior.
// Users can modify these without redeployment.
// Source: TOML configuration file
type FeatureConfig struct {
	Reservation ReservationConfig `toml:"reservation"`
	Maps        MapsConfig        `toml:"maps"`

	loc *time.Location
}

// DefaultFeatureConfig returns the built-in feature configuration.
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		Reservation: ReservationConfig{
			Timezone:        "Europe/Paris",
			DurationHours:   2,
			DefaultPassword: "fish",
			DefaultRCON:     "fishrcon",
			GraceHours:      1,
			SweepHours:      6,
		},
		Maps: MapsConfig{
			Available: []string{
				"cp_granary_pro_rc16f", "cp_process_f12", "cp_gullywash_f9", "cp_metalworks_f5",
				"cp_snakewater_final1", "cp_sultry_b8a", "cp_sunshine",
				"koth_bagel_rc10", "koth_product_final",
			},
			Config5CP:  "etf2l_6v6_5cp",
			ConfigKOTH: "etf2l_6v6_koth",
		},
	}
}

// LoadFeatureConfig loads feature configuration from a TOML file.
// A missing file yields the defaults; a present but invalid file is an error.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	cfg := DefaultFeatureConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to load feature config: %w", err)
			}
		}
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *FeatureConfig) resolve() error {
	loc, err := time.LoadLocation(c.Reservation.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Reservation.Timezone, err)
	}
	c.loc = loc
	if c.Reservation.DurationHours <= 0 {
		return fmt.Errorf("duration_hours must be positive")
	}
	if len(c.Maps.Available) == 0 {
		return fmt.Errorf("maps.available must not be empty")
	}
	return nil
}

// Location returns the reference timezone all user-supplied times are
// interpreted in.
func (c *FeatureConfig) Location() *time.Location {
	if c.loc == nil {
		c.loc = time.UTC
	}
	return c.loc
}

// Duration returns the fixed length of every reservation.
func (c *FeatureConfig) Duration() time.Duration {
	return time.Duration(c.Reservation.DurationHours) * time.Hour
}

// Grace returns the window after a reservation's end during which it stays
// visible before the sweep removes it.
func (c *FeatureConfig) Grace() time.Duration {
	return time.Duration(c.Reservation.GraceHours) * time.Hour
}

// SweepInterval returns how often the cleanup sweep runs.
func (c *FeatureConfig) SweepInterval() time.Duration {
	return time.Duration(c.Reservation.SweepHours) * time.Hour
}

// ConfigFileForMap returns the server config family for a map name.
// cp_ maps run the 5cp config, everything else the koth config.
func (c *FeatureConfig) ConfigFileForMap(mapName string) string {
	if len(mapName) >= 3 && mapName[:3] == "cp_" {
		return c.Maps.Config5CP
	}
	return c.Maps.ConfigKOTH
}
