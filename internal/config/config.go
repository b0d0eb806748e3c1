// Package config loads lazycommit settings from YAML, git config, the
// environment and command-line overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chmouel/lazycommit/internal/session"
	"github.com/chmouel/lazycommit/internal/theme"
)

// Prompter front ends.
const (
	InterfaceAuto  = "auto"
	InterfaceTUI   = "tui"
	InterfacePlain = "plain"
)

const appName = "lazycommit"

// ConfigFileEnv names a config file to use instead of the default lookup.
const ConfigFileEnv = "LAZYCOMMIT_CONFIG"

// AppConfig defines the global lazycommit configuration options.
type AppConfig struct {
	OllamaHost      string
	OllamaPort      int
	Model           string
	CatalogTTL      time.Duration
	ListTimeout     time.Duration
	GenerateTimeout time.Duration
	CommandTimeout  time.Duration
	// DiffConcurrency bounds parallel diff fetches; zero picks a CPU-based default.
	DiffConcurrency int
	MaxDiffChars    int
	DebugLog        string
	Theme           string
	ShowIcons       bool
	Interface       string
	UseFzf          bool
	Push            string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		OllamaHost:      "localhost",
		OllamaPort:      11434,
		CatalogTTL:      300 * time.Second,
		ListTimeout:     10 * time.Second,
		GenerateTimeout: 5 * time.Minute,
		CommandTimeout:  2 * time.Minute,
		MaxDiffChars:    8000,
		Theme:           theme.AutoName,
		ShowIcons:       true,
		Interface:       InterfaceAuto,
		UseFzf:          true,
		Push:            string(session.PushAsk),
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceDuration reads plain numbers as seconds and also accepts Go
// duration strings such as "90s" or "5m". Negative values keep the default.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	var d time.Duration
	switch v := value.(type) {
	case int:
		d = time.Duration(v) * time.Second
	case float64:
		d = time.Duration(v * float64(time.Second))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if secs, err := strconv.Atoi(text); err == nil {
			d = time.Duration(secs) * time.Second
		} else if parsed, err := time.ParseDuration(text); err == nil {
			d = parsed
		} else {
			return defaultVal
		}
	default:
		return defaultVal
	}
	if d < 0 {
		return defaultVal
	}
	return d
}

func coerceString(value any, defaultVal string) string {
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case int:
		return strconv.Itoa(v)
	}
	return defaultVal
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()

	cfg.OllamaHost = coerceString(data["ollama_host"], cfg.OllamaHost)
	if port := coerceInt(data["ollama_port"], cfg.OllamaPort); port > 0 && port <= 65535 {
		cfg.OllamaPort = port
	}
	cfg.Model = coerceString(data["model"], cfg.Model)
	cfg.CatalogTTL = coerceDuration(data["catalog_ttl"], cfg.CatalogTTL)
	cfg.ListTimeout = coerceDuration(data["list_timeout"], cfg.ListTimeout)
	cfg.GenerateTimeout = coerceDuration(data["generate_timeout"], cfg.GenerateTimeout)
	cfg.CommandTimeout = coerceDuration(data["command_timeout"], cfg.CommandTimeout)
	if n := coerceInt(data["diff_concurrency"], cfg.DiffConcurrency); n >= 0 {
		cfg.DiffConcurrency = n
	}
	if n := coerceInt(data["max_diff_chars"], cfg.MaxDiffChars); n >= 0 {
		cfg.MaxDiffChars = n
	}
	cfg.DebugLog = coerceString(data["debug_log"], cfg.DebugLog)
	if cfg.DebugLog != "" {
		if expanded, err := expandPath(cfg.DebugLog); err == nil {
			cfg.DebugLog = expanded
		}
	}
	cfg.Theme = strings.ToLower(coerceString(data["theme"], cfg.Theme))
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	cfg.Interface = strings.ToLower(coerceString(data["interface"], cfg.Interface))
	cfg.UseFzf = coerceBool(data["use_fzf"], cfg.UseFzf)
	cfg.Push = strings.ToLower(coerceString(data["push"], cfg.Push))

	return cfg
}

// Validate rejects settings that cannot be applied.
func (c *AppConfig) Validate() error {
	if c.OllamaHost == "" {
		return errors.New("ollama host must not be empty")
	}
	if c.OllamaPort <= 0 || c.OllamaPort > 65535 {
		return errors.Newf("invalid ollama port %d", c.OllamaPort)
	}
	if _, ok := theme.Lookup(c.Theme); !ok {
		return errors.Newf("unknown theme %q (available: %s, %s)",
			c.Theme, theme.AutoName, strings.Join(theme.AvailableThemes(), ", "))
	}
	if _, err := session.ParsePushMode(c.Push); err != nil {
		return err
	}
	switch c.Interface {
	case InterfaceAuto, InterfaceTUI, InterfacePlain:
	default:
		return errors.Newf("invalid interface %q (must be auto, tui or plain)", c.Interface)
	}
	return nil
}

// PushMode returns the validated push mode, defaulting to ask.
func (c *AppConfig) PushMode() session.PushMode {
	mode, err := session.ParsePushMode(c.Push)
	if err != nil {
		return session.PushAsk
	}
	return mode
}

type yamlView struct {
	OllamaHost      string `yaml:"ollama_host"`
	OllamaPort      int    `yaml:"ollama_port"`
	Model           string `yaml:"model"`
	CatalogTTL      int    `yaml:"catalog_ttl"`
	ListTimeout     int    `yaml:"list_timeout"`
	GenerateTimeout int    `yaml:"generate_timeout"`
	CommandTimeout  int    `yaml:"command_timeout"`
	DiffConcurrency int    `yaml:"diff_concurrency"`
	MaxDiffChars    int    `yaml:"max_diff_chars"`
	DebugLog        string `yaml:"debug_log"`
	Theme           string `yaml:"theme"`
	ShowIcons       bool   `yaml:"show_icons"`
	Interface       string `yaml:"interface"`
	UseFzf          bool   `yaml:"use_fzf"`
	Push            string `yaml:"push"`
}

// YAML renders the configuration in the file format, durations in seconds.
func (c *AppConfig) YAML() ([]byte, error) {
	return yaml.Marshal(yamlView{
		OllamaHost:      c.OllamaHost,
		OllamaPort:      c.OllamaPort,
		Model:           c.Model,
		CatalogTTL:      int(c.CatalogTTL / time.Second),
		ListTimeout:     int(c.ListTimeout / time.Second),
		GenerateTimeout: int(c.GenerateTimeout / time.Second),
		CommandTimeout:  int(c.CommandTimeout / time.Second),
		DiffConcurrency: c.DiffConcurrency,
		MaxDiffChars:    c.MaxDiffChars,
		DebugLog:        c.DebugLog,
		Theme:           c.Theme,
		ShowIcons:       c.ShowIcons,
		Interface:       c.Interface,
		UseFzf:          c.UseFzf,
		Push:            c.Push,
	})
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// ConfigDir returns the directory config files must live in.
func ConfigDir() string {
	return filepath.Clean(filepath.Join(getConfigDir(), appName))
}

// loadYAML reads the first config file found. A missing file yields an
// empty map; a file that does not parse is ignored.
func loadYAML(configPath string) (map[string]any, error) {
	configBase := ConfigDir()

	var paths []string
	if configPath != "" {
		expanded, err := expandPath(configPath)
		if err != nil {
			return nil, err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return nil, err
		}
		if !isPathWithin(configBase, absPath) {
			return nil, fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return map[string]any{}, nil
		}
		if yamlData == nil {
			yamlData = map[string]any{}
		}
		return yamlData, nil
	}
	return map[string]any{}, nil
}

// envKeys maps environment variables to config keys.
var envKeys = []struct{ env, key string }{
	{"OLLAMA_HOST", "ollama_host"},
	{"OLLAMA_PORT", "ollama_port"},
	{"OLLAMA_MODEL", "model"},
}

// loadEnv reads the Ollama variables. OLLAMA_HOST may carry a scheme and a
// port ("http://box:11500"); the port is used unless OLLAMA_PORT is set.
func loadEnv(getenv func(string) string) map[string]any {
	result := make(map[string]any)
	for _, e := range envKeys {
		if v := strings.TrimSpace(getenv(e.env)); v != "" {
			result[e.key] = v
		}
	}

	if raw, ok := result["ollama_host"].(string); ok {
		host, port := splitHost(raw)
		result["ollama_host"] = host
		if _, set := result["ollama_port"]; !set && port != "" {
			result["ollama_port"] = port
		}
	}
	return result
}

func splitHost(raw string) (host, port string) {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "http://"), "https://")
	raw = strings.TrimSuffix(raw, "/")
	if h, p, err := net.SplitHostPort(raw); err == nil {
		return h, p
	}
	return strings.Trim(raw, "[]"), ""
}

// dotEnvFile is loaded from the working directory before the environment is read.
var dotEnvFile = ".env"

func loadDotEnv() error {
	if _, err := os.Stat(dotEnvFile); err != nil {
		return nil
	}
	// Load never overrides variables that are already set.
	return godotenv.Load(dotEnvFile)
}

// LoadOptions select where Load looks.
type LoadOptions struct {
	// ConfigFile overrides the default config file lookup.
	ConfigFile string
	// Overrides are "lc.key=value" pairs applied after every other source.
	Overrides []string
	// RepoPath is used for local git config; empty means the working directory.
	RepoPath string
}

// Load merges defaults, the YAML file, git config (global then local), the
// environment and overrides, later sources winning.
func Load(opts LoadOptions) (*AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return DefaultConfig(), errors.Wrap(err, "loading .env")
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(ConfigFileEnv)
	}

	merged, err := loadYAML(configFile)
	if err != nil {
		return DefaultConfig(), err
	}

	if global, err := loadGitConfig(true, ""); err == nil {
		mergeInto(merged, global)
	}
	repoPath := opts.RepoPath
	if repoPath == "" {
		repoPath = determineRepoPath()
	}
	if repoPath != "" {
		if local, err := loadGitConfig(false, repoPath); err == nil {
			mergeInto(merged, local)
		}
	}

	mergeInto(merged, loadEnv(os.Getenv))

	if len(opts.Overrides) > 0 {
		overrides, err := parseCLIConfigOverrides(opts.Overrides)
		if err != nil {
			return DefaultConfig(), err
		}
		mergeInto(merged, overrides)
	}

	return parseConfig(merged), nil
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
