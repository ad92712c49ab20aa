package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/buildinfo"
	"github.com/matzehuels/corkboard/pkg/cache"
	"github.com/matzehuels/corkboard/pkg/config"
	"github.com/matzehuels/corkboard/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "corkboard"

	// renderKeyType labels render cache entries in cache hooks.
	renderKeyType = "render"
)

// Log levels exported for use in main.go.
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

	configPath string
	override   storeFlags
	cfg        *config.Config
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
		Short: "Corkboard keeps sticky notes where you put them",
		Long: `Corkboard is a spatial board engine: notes are dragged, stacked and zoomed
on a canvas while their positions are written behind to a backend store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"config file (default ./"+config.DefaultFile+" when present)")

	c.override.register(root)

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.itemsCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.override.apply(&cfg.Store) {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded",
		"path", c.configPath,
		"store", cfg.Store.Driver)
	return nil
}

// config returns the loaded configuration, or the defaults when commands run
// without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Cache & State
// =============================================================================

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	cc := c.config().Cache
	if noCache || cc.Disabled {
		return cache.NewNullCache(), nil
	}
	dir := cc.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir, renderKeyType)
}

// newStateStore returns the store for saved stacks. Failing to create the
// directory disables persistence instead of failing the command.
func (c *CLI) newStateStore() session.StateStore {
	states, err := session.NewFileStateStore("")
	if err != nil {
		c.Logger.Warn("stacks will not be saved", "err", err)
		return nil
	}
	return states
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/corkboard/).
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
