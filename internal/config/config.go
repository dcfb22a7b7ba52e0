package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/engine"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// Config holds the application configuration
type Config struct {
	Engine        EngineConfig `yaml:"engine,omitempty"`
	Cost          CostConfig   `yaml:"cost,omitempty"`
	Server        ServerConfig `yaml:"server,omitempty"`
	DBPath        string       `yaml:"db_path,omitempty"`
	UsageDays     int          `yaml:"usage_days,omitempty"` // days of usage history averaged into a monthly figure
	MQTT          MQTTConfig   `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig     `yaml:"home_assistant,omitempty"`
	Log           LogConfig    `yaml:"log,omitempty"`
}

// EngineConfig overrides the sizing constants. Zero values keep the stock value.
type EngineConfig struct {
	SafetyFactor        float64                            `yaml:"safety_factor,omitempty"`
	OffGridSafetyFactor float64                            `yaml:"off_grid_safety_factor,omitempty"`
	DepthOfDischarge    float64                            `yaml:"depth_of_discharge,omitempty"`
	RoundTripEfficiency float64                            `yaml:"round_trip_efficiency,omitempty"`
	PeakSunHours        float64                            `yaml:"peak_sun_hours,omitempty"`
	SolarDerate         float64                            `yaml:"solar_derate,omitempty"`
	MinInverterVA       float64                            `yaml:"min_inverter_va,omitempty"`
	MinBatteryKWh       float64                            `yaml:"min_battery_kwh,omitempty"`
	MinSolarKW          float64                            `yaml:"min_solar_kw,omitempty"`
	Objectives          map[string]sizing.ObjectiveProfile `yaml:"objectives,omitempty"`
}

// CostConfig selects and overrides cost presets
type CostConfig struct {
	DefaultPreset string                    `yaml:"default_preset,omitempty"`
	Presets       map[string]cost.Constants `yaml:"presets,omitempty"` // overlays built-ins, or adds new tables
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr            string `yaml:"addr,omitempty"`
	ShutdownSeconds int    `yaml:"shutdown_seconds,omitempty"`
}

// MQTTConfig holds MQTT broker settings for quote announcements
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	ClientID    string `yaml:"client_id,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`                  // e.g., "http://homeassistant.local:8123"
	Token     string `yaml:"token"`                // Long-lived access token
	EventType string `yaml:"event_type,omitempty"` // fired once per published quote
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level,omitempty"` // debug, info, warn, error
	Development bool   `yaml:"development,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetDBPath returns the database path, defaulting to ./gridsizer.db
func (c *Config) GetDBPath() string {
	if c.DBPath == "" {
		return "gridsizer.db"
	}
	return c.DBPath
}

// GetListenAddr returns the HTTP listen address
func (c *Config) GetListenAddr() string {
	if c.Server.Addr == "" {
		return ":8080"
	}
	return c.Server.Addr
}

// GetShutdownSeconds returns the graceful shutdown window
func (c *Config) GetShutdownSeconds() int {
	if c.Server.ShutdownSeconds <= 0 {
		return 10
	}
	return c.Server.ShutdownSeconds
}

// GetUsageDays returns how many days of usage history feed the monthly figure
func (c *Config) GetUsageDays() int {
	if c.UsageDays <= 0 {
		return 30
	}
	return c.UsageDays
}

// GetDefaultPreset returns the cost preset used when a request names none
func (c *Config) GetDefaultPreset() string {
	if c.Cost.DefaultPreset == "" {
		return cost.PresetPlatform
	}
	return strings.ToLower(c.Cost.DefaultPreset)
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "gridsizer"
	}
	return c.MQTT.TopicPrefix
}

// GetEventType returns the Home Assistant event fired for a quote
func (c *Config) GetEventType() string {
	if c.HomeAssistant.EventType == "" {
		return "gridsizer_quote"
	}
	return c.HomeAssistant.EventType
}

// SizingConstants overlays the engine section onto the stock constants
func (c *Config) SizingConstants() (sizing.Constants, error) {
	sc := sizing.DefaultConstants()
	e := c.Engine

	overlay(&sc.SafetyFactor, e.SafetyFactor)
	overlay(&sc.OffGridSafetyFactor, e.OffGridSafetyFactor)
	overlay(&sc.DepthOfDischarge, e.DepthOfDischarge)
	overlay(&sc.RoundTripEfficiency, e.RoundTripEfficiency)
	overlay(&sc.PeakSunHours, e.PeakSunHours)
	overlay(&sc.SolarDerate, e.SolarDerate)
	overlay(&sc.MinInverterVA, e.MinInverterVA)
	overlay(&sc.MinBatteryKWh, e.MinBatteryKWh)
	overlay(&sc.MinSolarKW, e.MinSolarKW)

	for name, p := range e.Objectives {
		o, err := sizing.ParseObjective(name)
		if err != nil {
			return sizing.Constants{}, fmt.Errorf("engine.objectives: %w", err)
		}
		base := sc.Objectives[o]
		overlay(&base.BackupHours, p.BackupHours)
		overlay(&base.SolarMultiplier, p.SolarMultiplier)
		sc.Objectives[o] = base
	}

	return sc, nil
}

// CostPresets returns the built-in presets with the configured overrides applied
func (c *Config) CostPresets() map[string]cost.Constants {
	out := cost.Presets()
	for name, p := range c.Cost.Presets {
		key := strings.ToLower(name)
		base, ok := out[key]
		if !ok {
			p.Name = key
			out[key] = p
			continue
		}
		if p.Currency != "" {
			base.Currency = p.Currency
		}
		overlay(&base.InverterCostPerKVA, p.InverterCostPerKVA)
		overlay(&base.BatteryCostPerKWh, p.BatteryCostPerKWh)
		overlay(&base.SolarCostPerKW, p.SolarCostPerKW)
		overlay(&base.InstallationOverheadRate, p.InstallationOverheadRate)
		overlay(&base.UtilityRate, p.UtilityRate)
		overlay(&base.PriceSpread, p.PriceSpread)
		overlay(&base.MonitorCost, p.MonitorCost)
		overlay(&base.SurgeProtectionCost, p.SurgeProtectionCost)
		out[key] = base
	}
	return out
}

// BuildEngine constructs the sizing engine from this configuration
func (c *Config) BuildEngine() (*engine.Engine, error) {
	sc, err := c.SizingConstants()
	if err != nil {
		return nil, err
	}
	e, err := engine.New(engine.Config{
		Sizing:        sc,
		Presets:       c.CostPresets(),
		DefaultPreset: c.GetDefaultPreset(),
	})
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return e, nil
}

func overlay(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
