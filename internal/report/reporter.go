package report

import (
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
)

// ConfigureScope tags every event with the deployment environment, the
// application version and the runtime it is built with.
func ConfigureScope(env, version string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(map[string]string{
			"env":         env,
			"app_version": version,
			"go_version":  runtime.Version(),
			"goos":        runtime.GOOS,
			"goarch":      runtime.GOARCH,
		})
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": hostname(),
		})
	})
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// SentryReportOptions provides optional data for reporting.
type SentryReportOptions struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
}

// ReportError reports err to Sentry at the given level, sentry.LevelError by default.
func ReportError(err error, levels ...sentry.Level) {
	opts := SentryReportOptions{Level: sentry.LevelError}
	if len(levels) > 0 {
		opts.Level = levels[0]
	}
	ReportErrorWithSentryOptions(err, opts)
}

// ReportErrorWithSentryOptions reports err with tags, extra context and a level.
// A nil error is ignored.
func ReportErrorWithSentryOptions(err error, opts SentryReportOptions) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if len(opts.ExtraContext) > 0 {
			scope.SetContext("extra", opts.ExtraContext)
		}
		scope.SetTags(opts.Tags)
		if opts.Level != "" {
			scope.SetLevel(opts.Level)
		}
		sentry.CaptureException(err)
	})
}
