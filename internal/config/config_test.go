package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chmouel/lazycommit/internal/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "localhost", cfg.OllamaHost)
	assert.Equal(t, 11434, cfg.OllamaPort)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, 300*time.Second, cfg.CatalogTTL)
	assert.Equal(t, 10*time.Second, cfg.ListTimeout)
	assert.Equal(t, 5*time.Minute, cfg.GenerateTimeout)
	assert.Equal(t, 2*time.Minute, cfg.CommandTimeout)
	assert.Zero(t, cfg.DiffConcurrency)
	assert.Equal(t, 8000, cfg.MaxDiffChars)
	assert.Equal(t, "auto", cfg.Theme)
	assert.True(t, cfg.ShowIcons)
	assert.Equal(t, InterfaceAuto, cfg.Interface)
	assert.True(t, cfg.UseFzf)
	assert.Equal(t, session.PushAsk, cfg.PushMode())
	require.NoError(t, cfg.Validate())
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		defaultVal bool
		expected   bool
	}{
		{name: "nil with default true", input: nil, defaultVal: true, expected: true},
		{name: "nil with default false", input: nil, defaultVal: false, expected: false},
		{name: "bool true", input: true, defaultVal: false, expected: true},
		{name: "bool false", input: false, defaultVal: true, expected: false},
		{name: "int non-zero", input: 42, defaultVal: false, expected: true},
		{name: "int 0", input: 0, defaultVal: true, expected: false},
		{name: "string yes", input: "yes", defaultVal: false, expected: true},
		{name: "string ON padded", input: "  ON ", defaultVal: false, expected: true},
		{name: "string off", input: "off", defaultVal: true, expected: false},
		{name: "string n", input: "n", defaultVal: true, expected: false},
		{name: "unknown string keeps default", input: "maybe", defaultVal: true, expected: true},
		{name: "float keeps default", input: 1.5, defaultVal: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceBool(tt.input, tt.defaultVal))
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		defaultVal int
		expected   int
	}{
		{name: "nil", input: nil, defaultVal: 7, expected: 7},
		{name: "int", input: 42, defaultVal: 0, expected: 42},
		{name: "bool keeps default", input: true, defaultVal: 3, expected: 3},
		{name: "numeric string", input: " 12 ", defaultVal: 0, expected: 12},
		{name: "empty string", input: "", defaultVal: 5, expected: 5},
		{name: "invalid string", input: "abc", defaultVal: 5, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceInt(tt.input, tt.defaultVal))
		})
	}
}

func TestCoerceDuration(t *testing.T) {
	def := 10 * time.Second
	tests := []struct {
		name     string
		input    any
		expected time.Duration
	}{
		{name: "nil", input: nil, expected: def},
		{name: "int seconds", input: 30, expected: 30 * time.Second},
		{name: "float seconds", input: 1.5, expected: 1500 * time.Millisecond},
		{name: "string seconds", input: "45", expected: 45 * time.Second},
		{name: "duration string", input: "2m", expected: 2 * time.Minute},
		{name: "zero disables", input: 0, expected: 0},
		{name: "negative keeps default", input: -4, expected: def},
		{name: "garbage keeps default", input: "soon", expected: def},
		{name: "bool keeps default", input: true, expected: def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceDuration(tt.input, def))
		})
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		validate func(*testing.T, *AppConfig)
	}{
		{
			name: "empty config uses defaults",
			data: map[string]any{},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "ollama endpoint",
			data: map[string]any{"ollama_host": "gpu-box", "ollama_port": "11500"},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "gpu-box", cfg.OllamaHost)
				assert.Equal(t, 11500, cfg.OllamaPort)
			},
		},
		{
			name: "out of range port keeps default",
			data: map[string]any{"ollama_port": 70000},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, 11434, cfg.OllamaPort)
			},
		},
		{
			name: "blank host keeps default",
			data: map[string]any{"ollama_host": "   "},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "localhost", cfg.OllamaHost)
			},
		},
		{
			name: "model and timeouts",
			data: map[string]any{
				"model":            "qwen2.5-coder",
				"catalog_ttl":      60,
				"list_timeout":     "5s",
				"generate_timeout": "120",
				"command_timeout":  0,
			},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "qwen2.5-coder", cfg.Model)
				assert.Equal(t, time.Minute, cfg.CatalogTTL)
				assert.Equal(t, 5*time.Second, cfg.ListTimeout)
				assert.Equal(t, 2*time.Minute, cfg.GenerateTimeout)
				assert.Zero(t, cfg.CommandTimeout)
			},
		},
		{
			name: "limits",
			data: map[string]any{"diff_concurrency": 3, "max_diff_chars": "0"},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, 3, cfg.DiffConcurrency)
				assert.Zero(t, cfg.MaxDiffChars)
			},
		},
		{
			name: "negative limits keep defaults",
			data: map[string]any{"diff_concurrency": -1, "max_diff_chars": -10},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Zero(t, cfg.DiffConcurrency)
				assert.Equal(t, 8000, cfg.MaxDiffChars)
			},
		},
		{
			name: "ui settings are lowercased",
			data: map[string]any{
				"theme":      "Nord",
				"interface":  "PLAIN",
				"push":       "Never",
				"show_icons": "false",
				"use_fzf":    false,
			},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "nord", cfg.Theme)
				assert.Equal(t, InterfacePlain, cfg.Interface)
				assert.Equal(t, session.PushNever, cfg.PushMode())
				assert.False(t, cfg.ShowIcons)
				assert.False(t, cfg.UseFzf)
			},
		},
		{
			name: "debug_log expands home",
			data: map[string]any{"debug_log": "~/lazycommit.log"},
			validate: func(t *testing.T, cfg *AppConfig) {
				home, err := os.UserHomeDir()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(home, "lazycommit.log"), cfg.DebugLog)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, parseConfig(tt.data))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		errMsg string
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "named theme", mutate: func(c *AppConfig) { c.Theme = "gruvbox-dark" }},
		{name: "unknown theme", mutate: func(c *AppConfig) { c.Theme = "neon" }, errMsg: `unknown theme "neon"`},
		{name: "bad push", mutate: func(c *AppConfig) { c.Push = "sometimes" }, errMsg: `invalid push mode "sometimes"`},
		{name: "bad interface", mutate: func(c *AppConfig) { c.Interface = "gui" }, errMsg: `invalid interface "gui"`},
		{name: "bad port", mutate: func(c *AppConfig) { c.OllamaPort = 0 }, errMsg: "invalid ollama port 0"},
		{name: "empty host", mutate: func(c *AppConfig) { c.OllamaHost = "" }, errMsg: "ollama host must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Theme = "dracula"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestYAMLRoundTripsThroughParseConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "llama3.2"
	cfg.GenerateTimeout = 90 * time.Second
	cfg.Push = "always"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "generate_timeout: 90\n")
	assert.Contains(t, string(out), "model: llama3.2\n")

	var data map[string]any
	require.NoError(t, yaml.Unmarshal(out, &data))
	assert.Equal(t, cfg, parseConfig(data))
}

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected map[string]any
	}{
		{name: "nothing set", env: map[string]string{}, expected: map[string]any{}},
		{
			name:     "plain values",
			env:      map[string]string{"OLLAMA_HOST": "box", "OLLAMA_PORT": "11500", "OLLAMA_MODEL": "phi3"},
			expected: map[string]any{"ollama_host": "box", "ollama_port": "11500", "model": "phi3"},
		},
		{
			name:     "host carries scheme and port",
			env:      map[string]string{"OLLAMA_HOST": "http://box:11600/"},
			expected: map[string]any{"ollama_host": "box", "ollama_port": "11600"},
		},
		{
			name:     "explicit port wins over host port",
			env:      map[string]string{"OLLAMA_HOST": "box:11600", "OLLAMA_PORT": "11700"},
			expected: map[string]any{"ollama_host": "box", "ollama_port": "11700"},
		},
		{
			name:     "bracketed ipv6",
			env:      map[string]string{"OLLAMA_HOST": "[::1]:11434"},
			expected: map[string]any{"ollama_host": "::1", "ollama_port": "11434"},
		},
		{
			name:     "blank values ignored",
			env:      map[string]string{"OLLAMA_MODEL": "  "},
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loadEnv(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.expected, got)
		})
	}
}

// isolate points every source Load consults at the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, k := range []string{"OLLAMA_HOST", "OLLAMA_PORT", "OLLAMA_MODEL", ConfigFileEnv} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())

	gitConfigMock = func([]string, string) (string, error) { return "", nil }
	t.Cleanup(func() { gitConfigMock = nil })
	return filepath.Join(tmpDir, appName)
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("no config file returns defaults", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("valid config file", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "config.yml", `ollama_host: box
ollama_port: 11500
model: llama3.2
push: never
show_icons: false
`)

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "box", cfg.OllamaHost)
		assert.Equal(t, 11500, cfg.OllamaPort)
		assert.Equal(t, "llama3.2", cfg.Model)
		assert.Equal(t, session.PushNever, cfg.PushMode())
		assert.False(t, cfg.ShowIcons)
	})

	t.Run("yaml wins over yml", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "config.yaml", "model: from-yaml\n")
		writeConfig(t, dir, "config.yml", "model: from-yml\n")

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "from-yaml", cfg.Model)
	})

	t.Run("invalid YAML returns defaults", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "config.yaml", "invalid: [[[")

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("explicit file from environment", func(t *testing.T) {
		dir := isolate(t)
		path := writeConfig(t, dir, "work.yaml", "model: work-model\n")
		t.Setenv(ConfigFileEnv, path)

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "work-model", cfg.Model)
	})

	t.Run("explicit file outside config dir is rejected", func(t *testing.T) {
		isolate(t)
		outside := writeConfig(t, t.TempDir(), "config.yaml", "model: x\n")

		cfg, err := Load(LoadOptions{ConfigFile: outside, RepoPath: "/repo"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config path must reside inside")
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("sources layer in order", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "config.yaml", `model: from-file
theme: nord
push: never
interface: plain
ollama_host: file-host
`)
		gitConfigMock = func(args []string, _ string) (string, error) {
			for _, a := range args {
				switch a {
				case "--global":
					return "lc.theme dracula\nlc.push always\nlc.interface tui\n", nil
				case "--local":
					return "lc.push ask\nlc.ollama-host git-host\n", nil
				}
			}
			return "", nil
		}
		t.Setenv("OLLAMA_HOST", "env-host")

		cfg, err := Load(LoadOptions{
			RepoPath:  "/repo",
			Overrides: []string{"lc.interface=plain"},
		})
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Model)
		assert.Equal(t, "dracula", cfg.Theme)
		assert.Equal(t, session.PushAsk, cfg.PushMode())
		assert.Equal(t, "env-host", cfg.OllamaHost)
		assert.Equal(t, InterfacePlain, cfg.Interface)
	})

	t.Run("dotenv fills unset variables only", func(t *testing.T) {
		isolate(t)
		writeConfig(t, ".", ".env", "OLLAMA_MODEL=from-dotenv\nOLLAMA_PORT=9999\n")
		t.Setenv("OLLAMA_PORT", "11500")

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.Model)
		assert.Equal(t, 11500, cfg.OllamaPort)
	})

	t.Run("bad override", func(t *testing.T) {
		isolate(t)

		_, err := Load(LoadOptions{RepoPath: "/repo", Overrides: []string{"model=x"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must start with 'lc.'")
	})

	t.Run("git failure is ignored", func(t *testing.T) {
		isolate(t)
		gitConfigMock = func([]string, string) (string, error) { return "", os.ErrNotExist }

		cfg, err := Load(LoadOptions{RepoPath: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LAZYCOMMIT_TEST_DIR", "/var/tmp")

	tests := []struct {
		input    string
		expected string
	}{
		{input: "~/logs/debug.log", expected: filepath.Join(home, "logs/debug.log")},
		{input: "$LAZYCOMMIT_TEST_DIR/debug.log", expected: "/var/tmp/debug.log"},
		{input: "/abs/path", expected: "/abs/path"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := expandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsPathWithin(t *testing.T) {
	assert.True(t, isPathWithin("/a/b", "/a/b"))
	assert.True(t, isPathWithin("/a/b", "/a/b/c.yaml"))
	assert.False(t, isPathWithin("/a/b", "/a/bc/config.yaml"))
	assert.False(t, isPathWithin("/a/b", "/a/b/../c.yaml"))
	assert.False(t, isPathWithin("/a/b", "/etc/passwd"))
}
