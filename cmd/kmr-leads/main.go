package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/engine"
	"github.com/kmrtax/kmr-leads/internal/messages"
	"github.com/kmrtax/kmr-leads/internal/remote"
	"github.com/kmrtax/kmr-leads/internal/store"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	envPath := flag.String(config.FlagEnv, config.DefaultEnvFile, config.FlagDescEnv)
	lang := flag.String(config.FlagLang, "", config.FlagDescLang)
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}
	if flag.NArg() == 0 {
		printUsage()
		return config.ExitCodeUsage
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	settings := loadSettings(*envPath, *configPath)
	if *lang != "" {
		settings.Language = *lang
	}

	if err := run(ctx, settings, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			return config.ExitCodeUsage
		}
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the store, the remote gateway and the engine, then executes one command.
func run(ctx context.Context, settings config.Settings, args []string) error {
	a := app.NewWithID(config.AppID)
	docs := store.NewDocuments(a.Storage())
	docs.SetString(config.PrefLastRun, config.Version)
	local := store.New(docs)

	gateway := remote.New(ctx, settings)
	defer func() {
		_ = gateway.Close()
	}()

	c := &cli{
		engine:  engine.New(local, gateway, engine.RealClock{}),
		store:   local,
		backend: gateway,
		msg:     messages.New(settings.Language),
		out:     os.Stdout,
		now:     time.Now,
		port:    settings.ServerPort,
	}
	return c.run(ctx, args)
}

// loadSettings builds the settings from every source in priority order.
// Unreadable files are logged and skipped.
func loadSettings(envPath, configPath string) config.Settings {
	sources := []config.Source{config.NewEnvSource()}

	dotenv, err := config.NewDotEnvSource(envPath)
	if err != nil {
		logSourceFailure(config.SourceNameDotEnv, err)
	}
	sources = append(sources, dotenv)

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	if configPath != "" {
		yml, err := config.NewYAMLSource(configPath)
		if err != nil {
			logSourceFailure(config.SourceNameYAML, err)
		}
		sources = append(sources, yml)
	}

	sources = append(sources, config.NewKeyringSource())
	return config.Load(sources...)
}

func logSourceFailure(name string, err error) {
	slog.Warn(config.MsgSourceFailed,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeySource, name,
		config.LogKeyError, err,
	)
}

// defaultConfigPath returns config.yaml in the per-user config directory, or
// "" when the platform has none.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.AppID, config.ConfigFileName)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, config.MsgUsage)
	flag.PrintDefaults()
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Stdout carries command
// output, so the console copy of the log goes to stderr and only when
// debugging; the cache-dir log file always receives it.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if debugMode {
		writers = append(writers, os.Stderr)
	}

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
