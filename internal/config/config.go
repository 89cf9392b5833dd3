package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the name of the global and repo configuration directories.
const DirName = ".memnotes"

// Config holds application configuration.
type Config struct {
	// ExportsDir is where exported documents are written.
	// Empty means <base dir>/exports.
	ExportsDir string `json:"exports_dir,omitempty"`

	// Locale selects the document language ("en", "fr"). Matched against
	// the supported catalogs; unsupported tags fall back to English.
	Locale string `json:"locale,omitempty"`

	// TimeZone is an IANA zone name used for dates in documents.
	// Empty means the local zone.
	TimeZone string `json:"time_zone,omitempty"`

	// MarkdownContent renders single-note bodies as Markdown instead of plain text.
	MarkdownContent bool `json:"markdown_content,omitempty"`

	// ConverterCommand is an HTML to PDF program reading stdin and writing stdout,
	// e.g. ["wkhtmltopdf", "--quiet", "-", "-"]. Empty keeps HTML output.
	ConverterCommand []string `json:"converter_command,omitempty"`

	// ShareCommand opens an exported file; the path is appended as the last
	// argument. Empty uses the system opener (open, xdg-open, start).
	ShareCommand []string `json:"share_command,omitempty"`

	// ShareDir, when set, shares by copying exports into this directory
	// instead of running a command.
	ShareDir string `json:"share_dir,omitempty"`

	// DisableShare turns the share facility off. Exports still write files.
	DisableShare bool `json:"disable_share,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Locale: "en",
	}
}

// Location returns the configured time zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c == nil || strings.TrimSpace(c.TimeZone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(strings.TrimSpace(c.TimeZone))
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.memnotes.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.memnotes) and repo (.memnotes) directories.
// Repo config is found by walking upward from startDir to find the nearest .memnotes/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	// Walk upward from startDir to find repo config
	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .memnotes/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars and commands; other arrays
// are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.ExportsDir = pick(overlay.ExportsDir, base.ExportsDir)
	result.Locale = pick(overlay.Locale, base.Locale)
	result.TimeZone = pick(overlay.TimeZone, base.TimeZone)
	result.ShareDir = pick(overlay.ShareDir, base.ShareDir)

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.MarkdownContent = base.MarkdownContent || overlay.MarkdownContent
	result.DisableShare = base.DisableShare || overlay.DisableShare

	// Commands: a command is one unit, so the overlay replaces it whole
	result.ConverterCommand = pickCommand(overlay.ConverterCommand, base.ConverterCommand)
	result.ShareCommand = pickCommand(overlay.ShareCommand, base.ShareCommand)

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pick(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return strings.TrimSpace(base)
}

func pickCommand(overlay, base []string) []string {
	src := base
	if len(overlay) > 0 {
		src = overlay
	}
	if len(src) == 0 {
		return nil
	}
	return append([]string(nil), src...)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
