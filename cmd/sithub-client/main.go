package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/sithub-client/internal/config"
	"github.com/username/sithub-client/internal/locale"
	"github.com/username/sithub-client/internal/preferences"
	"github.com/username/sithub-client/internal/sithub"
	"github.com/username/sithub-client/internal/weekselector"
	"github.com/username/sithub-client/pkg/dateutil"
)

var (
	configPath string
	noColor    bool
	logger     *zap.Logger = zap.NewNop()
	cfg        *config.Config
	stdout     io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sithub-client",
		Short:         "SitHub desk booking client",
		Long:          "Pick a week, see desk availability per day and book desks on a SitHub server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				initLogger("info")
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.Log.File != "" {
				fileLogger, err := initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger(cfg.Log.Level)
					logger.Warn("File logging unavailable, logging to stderr", zap.Error(err))
				} else {
					logger = fileLogger
				}
			} else {
				initLogger(cfg.Log.Level)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, $HOME/.sithub-client/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colour output")

	rootCmd.AddCommand(
		weeksCmd(),
		daysCmd(),
		prefsCmd(),
		areasCmd(),
		groupsCmd(),
		itemsCmd(),
		availabilityCmd(),
		bookingsCmd(),
		bookCmd(),
		bookWeekCmd(),
		cancelCmd(),
		noteCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the components every command builds from config
type app struct {
	storage      *preferences.SafeStorage
	closeStorage func() error
	weekends     *preferences.WeekendPreference
	mode         *preferences.BookingModePreference
	theme        *preferences.ThemePreference
	formatter    *locale.NumericFormatter
	selector     *weekselector.Selector
	out          *printer
}

func newApp() (*app, error) {
	storage, closeStorage, err := preferences.OpenStorage(cfg.Preferences.Backend, cfg.Preferences.GetPath(), logger)
	if err != nil {
		// Preferences are optional; run with defaults
		logger.Warn("Preference storage unavailable", zap.Error(err))
		storage = nil
	}
	safe := preferences.NewSafeStorage(storage, logger)

	a := &app{
		storage:      safe,
		closeStorage: closeStorage,
		weekends:     preferences.NewWeekendPreference(safe),
		mode:         preferences.NewBookingModePreference(safe),
		theme:        preferences.NewThemePreference(safe),
		formatter:    locale.NewNumericFormatter(cfg.Display.Locale),
	}
	a.selector = weekselector.New(weekselector.SystemClock, a.formatter, a.weekends, logger)
	a.out = newPrinter(stdout, a.theme.Theme(), noColor)

	logger.Debug("Client initialised",
		zap.String("locale", a.formatter.Tag().String()),
		zap.String("preferences_backend", cfg.Preferences.Backend),
		zap.Bool("show_weekends", a.weekends.ShowWeekends()))

	return a, nil
}

func (a *app) Close() {
	if err := a.closeStorage(); err != nil {
		logger.Warn("Failed to close preference storage", zap.Error(err))
	}
}

// selectWeek applies a --week flag value. An empty value keeps the current
// week. A malformed value falls back to it, and a week number the year does
// not have is shown as the week it lands on; both print a warning.
func (a *app) selectWeek(week string) {
	if week == "" {
		return
	}
	a.selector.SetSelectedWeek(week)
	monday, err := a.selector.ResolveSelectedMonday()
	switch {
	case errors.Is(err, dateutil.ErrWeekOutOfRange):
		a.out.Printf("%s %v, showing %s\n", a.out.Warn("warning:"), err, dateutil.ISOWeekString(monday))
	case err != nil:
		a.out.Printf("%s %v, showing the current week\n", a.out.Warn("warning:"), err)
	}
}

// newClient connects to the configured server and logs in when credentials
// are configured
func (a *app) newClient(ctx context.Context) (*sithub.Client, error) {
	client, err := sithub.NewClient(cfg.Server.BaseURL, cfg.Server.GetTimeout(), logger)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.HasCredentials() {
		if _, err := client.Login(ctx, cfg.Auth.Email, cfg.Auth.Password); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
