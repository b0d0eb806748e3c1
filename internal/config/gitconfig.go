package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const gitConfigSection = "lc."

// gitConfigMock allows tests to mock git config output.
var gitConfigMock func(args []string, repoPath string) (string, error)

// runGitConfig executes git config command and returns raw output.
func runGitConfig(args []string, repoPath string) (string, error) {
	if gitConfigMock != nil {
		return gitConfigMock(args, repoPath)
	}

	cmd := exec.Command("git", args...)
	if repoPath != "" {
		cmd.Dir = repoPath
	}

	output, err := cmd.Output()
	if err != nil {
		// git config returns exit code 1 when key not found (not an error)
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// normalizeKey maps a git variable name to a config key. Git forbids
// underscores in names, so "lc.ollama-host" stands for ollama_host.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

// parseGitConfigOutput parses git config output into a key/value map.
// Input format: "lc.ollama-host box\nlc.push never\n". The last value of a
// repeated key wins, as git itself does for single-valued keys.
func parseGitConfigOutput(output string) map[string]any {
	configMap := make(map[string]any)

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// SplitN keeps values containing spaces intact
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], gitConfigSection) {
			continue
		}

		key := normalizeKey(strings.TrimPrefix(parts[0], gitConfigSection))
		configMap[key] = parts[1]
	}

	return configMap
}

// loadGitConfig reads lc.* values from the global or the local git config.
func loadGitConfig(globalOnly bool, repoPath string) (map[string]any, error) {
	args := []string{"config", "--get-regexp", `^lc\.`}

	if globalOnly {
		args = append(args, "--global")
	} else {
		args = append(args, "--local")
	}

	output, err := runGitConfig(args, repoPath)
	if err != nil {
		return nil, err
	}

	return parseGitConfigOutput(output), nil
}

// isInGitRepo checks if path is in a git repository.
func isInGitRepo(path string) bool {
	if path == "" {
		return false
	}
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}

// determineRepoPath returns the working directory when it is inside a repository.
func determineRepoPath() string {
	if wd, err := os.Getwd(); err == nil && isInGitRepo(wd) {
		return wd
	}
	return ""
}

// parseCLIConfigOverrides parses --config=lc.key=value format.
// Returns a map suitable for parseConfig().
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: lc.key=value (note: use = not space)", override)
		}

		fullKey := parts[0]
		if !strings.HasPrefix(fullKey, gitConfigSection) {
			return nil, fmt.Errorf("config override key must start with 'lc.': %q", fullKey)
		}

		key := normalizeKey(strings.TrimPrefix(fullKey, gitConfigSection))
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}

		result[key] = parts[1]
	}

	return result, nil
}
