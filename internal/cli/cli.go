package cli

import (
	"context"
	goerrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/buildinfo"
	"github.com/matzehuels/geoexpr/pkg/cache"
	"github.com/matzehuels/geoexpr/pkg/config"
	"github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "geoexpr"

	// redisTimeout bounds the connection check against a configured Redis.
	redisTimeout = 5 * time.Second
)

// Log levels accepted by New. --verbose switches to LogDebug.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag. Empty means geoexpr.toml in
	// the working directory.
	configPath string

	// verbose is set by the --verbose flag and raises the log level to
	// debug before any command runs.
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "geoexpr encodes and optimizes expression graphs",
		Long: `geoexpr converts computed-value graphs between the compound-value format
and the reference-table format, removing duplicated subgraphs and inlining
single-use values along the way.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every pipeline stage")

	// Register all subcommands
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Exit Codes
// =============================================================================

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitBadInput  = 2   // unreadable, unparsable or invalid input
	ExitBadGraph  = 3   // input parsed but cannot be encoded
	ExitCancelled = 130 // interrupted, as shells report SIGINT
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if goerrors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidName, errors.ErrCodeFileNotFound:
		return ExitBadInput
	case errors.ErrCodeUnencodable, errors.ErrCodeMalformedGraph, errors.ErrCodeCycle:
		return ExitBadGraph
	}
	return ExitFailure
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration file named by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Namespace+":")
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = time.Duration(cfg.Cache.TTL)
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(ctx, redisTimeout)
		defer cancel()
		store, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err == nil {
			return store, nil
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "error", err)
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/geoexpr/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// resolveCacheDir returns the configured cache directory, expanding a
// leading "~/", or the XDG default.
func resolveCacheDir(cfg config.Config) (string, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		return cacheDir()
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	return dir, nil
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput reads a file, or standard input when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	if err := errors.ValidateInputPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such file %s", path)
	}
	return data, err
}

// writeOutput writes data to path, or to w when path is empty. A trailing
// newline is added for terminal output.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
