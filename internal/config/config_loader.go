package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateConfigFlags ensures that only one configuration source is specified:
// either a config file "--config-file", a remote config URL "--config-url".
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || len(flag.Args()) > 0 {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFromName(name string) format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

// parseSettings decodes data, fills defaults and validates the result.
func parseSettings(data []byte, f format) (Settings, error) {
	var s Settings
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// loadSettingsFromFile reads a JSON or YAML configuration file from disk.
// The format is chosen by file extension.
func loadSettingsFromFile(filePath string) (Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseSettings(data, formatFromName(filePath))
}

// loadSettingsFromURL fetches the configuration from a remote HTTP(S) endpoint,
// using optional basic authentication. YAML is assumed when the response
// content type or the URL path says so, JSON otherwise.
func loadSettingsFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) (Settings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Settings{}, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read remote config: %w", err)
	}

	f := formatFromName(req.URL.Path)
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		f = formatYAML
	}
	return parseSettings(data, f)
}
