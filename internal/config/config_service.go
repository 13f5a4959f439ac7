package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"trainmap.dev/internal/report"
	"trainmap.dev/internal/utils"
)

// LoadSettingsFromFile loads and validates the settings stored at filePath.
func LoadSettingsFromFile(filePath string) (Settings, error) {
	settings, err := loadSettingsFromFile(filePath)
	if err != nil {
		err = fmt.Errorf("failed to load config from file %s: %w", filePath, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return Settings{}, err
	}
	return settings, nil
}

// LoadSettingsFromURL loads and validates the settings served at url.
func LoadSettingsFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string) (Settings, error) {
	settings, err := loadSettingsFromURL(ctx, client, url, authUser, authPass, DefaultMaxRetries)
	if err != nil {
		err = fmt.Errorf("failed to load config from URL %s: %w", url, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("config_url", url),
			Level: sentry.LevelError,
		})
		return Settings{}, err
	}
	return settings, nil
}
