package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version   int             `toml:"version"`
	LogFile   string          `toml:"log_file"`
	Device    DeviceConfig    `toml:"device"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Transfer  TransferConfig  `toml:"transfer"`
	Receive   ReceiveConfig   `toml:"receive"`
	History   HistoryConfig   `toml:"history"`
}

// DeviceConfig describes how this machine presents itself to peers
type DeviceConfig struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Owner string `toml:"owner"`
}

// DiscoveryConfig controls the beacon watcher and announcer
type DiscoveryConfig struct {
	Port           int      `toml:"port"`
	BeaconInterval Duration `toml:"beacon_interval"`
	Expiry         Duration `toml:"expiry"`
	Spatial        bool     `toml:"spatially_proximal"` // default for the proximity toggle
	OnlyAvailable  bool     `toml:"only_available"`
	SameUserOnly   bool     `toml:"same_user_only"`
}

// TransferConfig controls outgoing transfers
type TransferConfig struct {
	Parallel  int      `toml:"parallel"`
	Timeout   Duration `toml:"timeout"`
	ChunkSize int      `toml:"chunk_size"` // bytes between progress updates
}

// ReceiveConfig controls `nearshare receive`
type ReceiveConfig struct {
	Listen         string `toml:"listen"`
	Directory      string `toml:"directory"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	AcceptURIs     bool   `toml:"accept_uris"`
	Announce       bool   `toml:"announce"`
}

// HistoryConfig points at the transfer history database
type HistoryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Database string `toml:"database"`
}

// Duration is a time.Duration that reads and writes as "5s" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// Filters converts the discovery settings into watcher filters
func (c *Config) Filters() domain.DiscoveryFilters {
	f := domain.DefaultFilters()
	if !c.Discovery.Spatial {
		f.Discovery = domain.DiscoveryProximal
	}
	if c.Discovery.OnlyAvailable {
		f.Status = domain.StatusTypeAvailable
	}
	if c.Discovery.SameUserOnly {
		f.Authorization = domain.AuthSameUser
	}
	f.Owner = c.Device.Owner
	return f
}

// Self describes this machine the way peers see it
func (c *Config) Self() domain.Device {
	kind := domain.DeviceKind(c.Device.Kind)
	if kind == "" {
		kind = domain.KindUnknown
	}
	return domain.Device{
		ID:             c.Device.ID,
		DisplayName:    c.Device.Name,
		Kind:           kind,
		Status:         domain.StatusAvailable,
		Owner:          c.Device.Owner,
		AllowAnonymous: c.Receive.AllowAnonymous,
		Capabilities:   []string{domain.CapabilityNearShare},
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
	getenv   func(string) string
}

// NewConfigService creates a config service reading the user's config file
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(configDir(), "config.toml"),
		getenv:   os.Getenv,
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	return &configService{bus: bus, filePath: path, getenv: os.Getenv}
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err != nil {
			dir = "."
		}
		dir = filepath.Join(dir, ".config")
	}
	return filepath.Join(dir, "nearshare")
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "nearshare")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "nearshare")
}

func (cs *configService) Path() string { return cs.filePath }

// Load loads the configuration file, falling back to defaults when it does not exist.
// NEARSHARE_* environment variables (optionally from a .env file) override file values.
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		loaded, err := cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cs.applyEnv(cfg)

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so missing keys keep sensible values
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadDotEnv reads a .env file into the process environment if present.
// Variables already set win over the file.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func (cs *configService) applyEnv(cfg *Config) {
	if v := cs.getenv("NEARSHARE_NAME"); v != "" {
		cfg.Device.Name = v
	}
	if v := cs.getenv("NEARSHARE_OWNER"); v != "" {
		cfg.Device.Owner = v
	}
	if v := cs.getenv("NEARSHARE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port < 65536 {
			cfg.Discovery.Port = port
		}
	}
	if v := cs.getenv("NEARSHARE_LISTEN"); v != "" {
		cfg.Receive.Listen = v
	}
	if v := cs.getenv("NEARSHARE_RECEIVE_DIR"); v != "" {
		cfg.Receive.Directory = v
	}
	if v := cs.getenv("NEARSHARE_HISTORY_DB"); v != "" {
		cfg.History.Database = v
	}
	if v := cs.getenv("NEARSHARE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// Validate checks values that would break discovery or transfers
func (c *Config) Validate() error {
	if c.Discovery.Port <= 0 || c.Discovery.Port > 65535 {
		return fmt.Errorf("discovery.port %d out of range", c.Discovery.Port)
	}
	if c.Discovery.BeaconInterval.Duration <= 0 {
		return fmt.Errorf("discovery.beacon_interval must be positive")
	}
	if c.Discovery.Expiry.Duration < c.Discovery.BeaconInterval.Duration {
		return fmt.Errorf("discovery.expiry must be at least beacon_interval")
	}
	if c.Transfer.Parallel < 1 {
		return fmt.Errorf("transfer.parallel must be at least 1")
	}
	if c.Transfer.ChunkSize < 512 {
		return fmt.Errorf("transfer.chunk_size must be at least 512 bytes")
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "nearshare"
	}
	owner := os.Getenv("USER")

	receiveDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		receiveDir = filepath.Join(home, "Downloads", "nearshare")
	}

	return &Config{
		Version: 1,
		LogFile: filepath.Join(stateDir(), "nearshare.log"),
		Device: DeviceConfig{
			ID:    hostname,
			Name:  hostname,
			Kind:  string(domain.KindDesktop),
			Owner: owner,
		},
		Discovery: DiscoveryConfig{
			Port:           47474,
			BeaconInterval: Duration{2 * time.Second},
			Expiry:         Duration{7 * time.Second},
			Spatial:        true,
		},
		Transfer: TransferConfig{
			Parallel:  3,
			Timeout:   Duration{10 * time.Minute},
			ChunkSize: 64 * 1024,
		},
		Receive: ReceiveConfig{
			Listen:         ":47475",
			Directory:      receiveDir,
			AllowAnonymous: true,
			AcceptURIs:     true,
			Announce:       true,
		},
		History: HistoryConfig{
			Enabled:  true,
			Database: filepath.Join(stateDir(), "history.db"),
		},
	}
}
