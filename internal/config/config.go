// Package config loads librovore's TOML configuration file (spec §6):
// cache tuning for the three HTTP-layer caches plus the inventory/
// structure extension entry lists consumed by internal/extension.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/librovore/librovore/internal/httpcache"
)

// EnvVar is the environment variable that may point at a config file
// (spec §6).
const EnvVar = "LIBROVORE_CONFIG"

// Config is the decoded shape of the TOML file in spec §6.
type Config struct {
	Cache              CacheConfig       `toml:"cache"`
	InventoryExtensions []ExtensionEntry `toml:"inventory-extensions"`
	StructureExtensions []ExtensionEntry `toml:"structure-extensions"`
}

// CacheConfig mirrors the [cache.content]/[cache.probe]/[cache.robots]
// TOML tables.
type CacheConfig struct {
	Content ContentCacheConfig `toml:"content"`
	Probe   ProbeCacheConfig   `toml:"probe"`
	Robots  RobotsCacheConfig  `toml:"robots"`
}

type ContentCacheConfig struct {
	SuccessTTL      int `toml:"success-ttl"`
	ErrorTTL        int `toml:"error-ttl"`
	NetworkErrorTTL int `toml:"network-error-ttl"`
	MaxMemoryBytes  int `toml:"max-memory-bytes"`
}

type ProbeCacheConfig struct {
	SuccessTTL int `toml:"success-ttl"`
	ErrorTTL   int `toml:"error-ttl"`
	EntriesMax int `toml:"entries-max"`
}

type RobotsCacheConfig struct {
	TTL            int     `toml:"ttl"`
	EntriesMax     int     `toml:"entries-max"`
	RequestTimeout float64 `toml:"request-timeout"`
	UserAgent      string  `toml:"user-agent"`
}

// ExtensionEntry is one [[inventory-extensions]] or [[structure-extensions]]
// table (spec §4.7, §6).
type ExtensionEntry struct {
	Name      string         `toml:"name"`
	Enabled   bool           `toml:"enabled"`
	Package   string         `toml:"package"`
	Arguments map[string]any `toml:"arguments"`
}

// External reports whether this entry names an out-of-tree package
// (spec §4.7 step 2).
func (e ExtensionEntry) External() bool { return e.Package != "" }

// Default returns the configuration implied by spec §6 when no file is
// present: default cache tuning, sphinx/mkdocs/rustdoc/pydoctor enabled
// intrinsically for both genera.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Content: ContentCacheConfig{SuccessTTL: 300, ErrorTTL: 60, NetworkErrorTTL: 10, MaxMemoryBytes: 32 * 1024 * 1024},
			Probe:   ProbeCacheConfig{SuccessTTL: 300, ErrorTTL: 60, EntriesMax: 1000},
			Robots:  RobotsCacheConfig{TTL: 86400, EntriesMax: 500, RequestTimeout: 5.0, UserAgent: "librovore/1.0"},
		},
		InventoryExtensions: []ExtensionEntry{
			{Name: "sphinx", Enabled: true},
			{Name: "mkdocs", Enabled: true},
			{Name: "rustdoc", Enabled: true},
			{Name: "pydoctor", Enabled: true},
		},
		StructureExtensions: []ExtensionEntry{
			{Name: "sphinx", Enabled: true},
			{Name: "mkdocs", Enabled: true},
			{Name: "rustdoc", Enabled: true},
			{Name: "pydoctor", Enabled: true},
		},
	}
}

// Load reads and decodes a TOML file at path, falling back to Default
// for every field the file omits (go-toml/v2 decodes into the zero value
// otherwise, so we decode onto an already-defaulted Config).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	// Extension lists are wholesale-replaced by an explicit file rather
	// than merged field-by-field with the built-in defaults; a config
	// file that wants the built-ins still lists them.
	cfg.InventoryExtensions = nil
	cfg.StructureExtensions = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if len(cfg.InventoryExtensions) == 0 {
		cfg.InventoryExtensions = Default().InventoryExtensions
	}
	if len(cfg.StructureExtensions) == 0 {
		cfg.StructureExtensions = Default().StructureExtensions
	}
	return cfg, nil
}

// Resolve returns the path to load: explicit flagPath if given, else
// LIBROVORE_CONFIG, else "" (meaning: use Default()).
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvVar)
}

// HTTPCacheConfig converts the [cache.*] sections into httpcache.Config,
// applying httpcache.DefaultConfig for fields the TOML shape doesn't
// carry (timeouts, per-host concurrency - spec §6 doesn't expose these
// in the file, only in code-level defaults).
func (c Config) HTTPCacheConfig() httpcache.Config {
	base := httpcache.DefaultConfig()
	base.ContentSuccessTTL = time.Duration(c.Cache.Content.SuccessTTL) * time.Second
	base.ContentErrorTTL = time.Duration(c.Cache.Content.ErrorTTL) * time.Second
	base.ContentNetworkTTL = time.Duration(c.Cache.Content.NetworkErrorTTL) * time.Second
	base.ContentMaxBytes = c.Cache.Content.MaxMemoryBytes

	base.ProbeSuccessTTL = time.Duration(c.Cache.Probe.SuccessTTL) * time.Second
	base.ProbeErrorTTL = time.Duration(c.Cache.Probe.ErrorTTL) * time.Second
	base.ProbeMaxEntries = c.Cache.Probe.EntriesMax

	base.RobotsTTL = time.Duration(c.Cache.Robots.TTL) * time.Second
	base.RobotsMaxEntries = c.Cache.Robots.EntriesMax
	base.RobotsRequestTimeout = time.Duration(c.Cache.Robots.RequestTimeout * float64(time.Second))
	if c.Cache.Robots.UserAgent != "" {
		base.UserAgent = c.Cache.Robots.UserAgent
	}
	return base
}
