package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "BILLVIEW_API_URL"
	EnvToken    = "BILLVIEW_TOKEN"
	EnvDatabase = "BILLVIEW_DATABASE"
	EnvCurrency = "BILLVIEW_CURRENCY"

	// EnvPassphrase supplies the passphrase for encrypted files when no
	// terminal is available.
	EnvPassphrase = "BILLVIEW_PASSPHRASE"
)

// HideRule hides bills by name, optionally only for due dates before or after a
// given day.
type HideRule struct {
	Pattern string `yaml:"pattern"`
	Before  string `yaml:"before,omitempty"` // hide only bills due before this date (YYYY-MM-DD)
	After   string `yaml:"after,omitempty"`  // hide only bills due on or after this date

	regex      *regexp.Regexp `yaml:"-"`
	beforeDate time.Time      `yaml:"-"`
	afterDate  time.Time      `yaml:"-"`
}

// ShareDefault is the split assumed for a shared bill when the backend does not
// report the user's portion.
type ShareDefault struct {
	SplitType  SplitType `yaml:"split_type"`
	SplitValue *float64  `yaml:"split_value,omitempty"`
}

type Config struct {
	// APIURL is the backend base URL, without the /api/v2 suffix
	APIURL   string `yaml:"api_url,omitempty"`
	Database string `yaml:"database,omitempty"`
	Token    string `yaml:"token,omitempty"`
	Currency string `yaml:"currency,omitempty"`

	// Descriptions maps bill names to custom descriptions
	Descriptions map[string]string `yaml:"descriptions,omitempty"`

	// Tags maps bill names to a list of tags (e.g., "housing", "utilities")
	Tags map[string][]string `yaml:"tags,omitempty"`

	// Hide lists rules for bills that should never be shown (strings or objects with date bounds)
	Hide []yaml.Node `yaml:"hide,omitempty"`

	// ShareDefaults maps bill names to the split used for portion calculations
	ShareDefaults map[string]ShareDefault `yaml:"share_defaults,omitempty"`

	hideRules []HideRule `yaml:"-"`
}

// DefaultConfigPath returns the default config file path (~/.billview/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".billview", "config.yaml")
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for _, node := range cfg.Hide {
		rule, err := parseHideRule(node)
		if err != nil {
			return nil, err
		}
		cfg.hideRules = append(cfg.hideRules, rule)
	}

	for name, def := range cfg.ShareDefaults {
		if err := ValidateSplit(def.SplitType, def.SplitValue); err != nil {
			return nil, fmt.Errorf("share default for %q: %w", name, err)
		}
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads path, returning an empty config when the file does
// not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

func parseHideRule(node yaml.Node) (HideRule, error) {
	var rule HideRule

	switch node.Kind {
	case yaml.ScalarNode:
		rule.Pattern = node.Value
	case yaml.MappingNode:
		if err := node.Decode(&rule); err != nil {
			return rule, fmt.Errorf("parsing hide rule: %w", err)
		}
	default:
		return rule, fmt.Errorf("invalid hide rule format at line %d", node.Line)
	}

	re, err := regexp.Compile("(?i)" + rule.Pattern)
	if err != nil {
		return rule, fmt.Errorf("invalid hide pattern %q: %w", rule.Pattern, err)
	}
	rule.regex = re

	if rule.Before != "" {
		t, ok := ParseLocalDateIn(rule.Before, time.UTC)
		if !ok {
			return rule, fmt.Errorf("invalid 'before' date %q", rule.Before)
		}
		rule.beforeDate = t
	}
	if rule.After != "" {
		t, ok := ParseLocalDateIn(rule.After, time.UTC)
		if !ok {
			return rule, fmt.Errorf("invalid 'after' date %q", rule.After)
		}
		rule.afterDate = t
	}
	return rule, nil
}

// ShouldHide returns true if the bill matches any hide rule. Rules with date
// bounds only apply to bills whose next_due parses.
func (c *Config) ShouldHide(b Bill) bool {
	if c == nil {
		return false
	}
	for _, rule := range c.hideRules {
		if !rule.regex.MatchString(b.Name) {
			continue
		}
		if rule.beforeDate.IsZero() && rule.afterDate.IsZero() {
			return true
		}

		due, ok := ParseLocalDateIn(b.NextDue, time.UTC)
		if !ok {
			continue
		}
		if !rule.beforeDate.IsZero() && !due.Before(rule.beforeDate) {
			continue
		}
		if !rule.afterDate.IsZero() && due.Before(rule.afterDate) {
			continue
		}
		return true
	}
	return false
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// the file may hold an API token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetDescription returns the custom description for a bill, or empty string
func (c *Config) GetDescription(name string) string {
	if c == nil || c.Descriptions == nil {
		return ""
	}
	return c.Descriptions[name]
}

// GetTags returns the tags for a bill, or nil if none
func (c *Config) GetTags(name string) []string {
	if c == nil || c.Tags == nil {
		return nil
	}
	return c.Tags[name]
}

// GetShareDefault returns the configured split for a bill, if any.
func (c *Config) GetShareDefault(name string) (ShareDefault, bool) {
	if c == nil || c.ShareDefaults == nil {
		return ShareDefault{}, false
	}
	d, ok := c.ShareDefaults[name]
	return d, ok
}

// LoadEnv reads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		c.Currency = v
	}
}

// GenerateConfigTemplate creates a config listing every bill with an empty
// description, ready for the user to fill in.
func GenerateConfigTemplate(bills []Bill) *Config {
	cfg := &Config{
		Descriptions: make(map[string]string),
	}

	for _, b := range bills {
		cfg.Descriptions[b.Name] = ""
	}

	return cfg
}
