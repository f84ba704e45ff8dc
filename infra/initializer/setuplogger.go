package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	errorColor = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF6B6B"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F4C95D"}
	infoColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	debugColor = lipgloss.AdaptiveColor{Light: "#5E548E", Dark: "#9F86C0"}
	idColor    = lipgloss.AdaptiveColor{Light: "#3A86FF", Dark: "#8ECAE6"}
)

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

// ledgerStyles badges each level and highlights the ids the services log,
// so one account or job can be followed through the worker output.
func ledgerStyles() *log.Styles {
	styles := log.DefaultStyles()
	badges := map[log.Level]struct {
		label string
		color lipgloss.AdaptiveColor
	}{
		log.ErrorLevel: {"ERR", errorColor},
		log.WarnLevel:  {"WRN", warnColor},
		log.InfoLevel:  {"INF", infoColor},
		log.DebugLevel: {"DBG", debugColor},
	}
	for level, b := range badges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(b.label).
			Bold(true).
			Padding(0, 1).
			Foreground(b.color)
	}

	styles.Keys["error"] = lipgloss.NewStyle().Foreground(errorColor)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	for _, key := range []string{"account_id", "job_id", "series_id", "obligation_id", "budget_id"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(idColor)
	}
	styles.Keys["component"] = lipgloss.NewStyle().Foreground(debugColor)
	styles.Values["component"] = lipgloss.NewStyle().Bold(true)
	return styles
}

func setupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

// newLogger builds the process logger on w and installs it as slog's default.
func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	formatter, ok := formatters[cfg.Format]
	if !ok {
		formatter = log.TextFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Level <= int(log.DebugLevel),
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(ledgerStyles())

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
