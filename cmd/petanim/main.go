// petanim inspects and plays pet animation catalogs from the terminal.
//
// Usage:
//
//	petanim list
//	petanim validate --catalog pets.toml
//	petanim simulate fire_dragon attacking --dt 100ms
//	petanim export water_spirit --format toml
//	petanim watch earth_guardian attacking
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gonewx/petanim/data"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/embedded"
	"github.com/gonewx/petanim/pkg/logging"
)

const Version = "v0.1.0"

// cli carries the persistent flags and the process logger.
type cli struct {
	catalogPath string
	configPath  string
	verbose     bool
	logger      *zap.Logger
}

func main() {
	embedded.Init(data.FS)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "petanim",
		Short:         "Frame-driven pet animation engine tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(c.verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "Path to a pet catalog (.yaml/.yml/.toml); bundled catalog when empty")
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to an engine tuning file (yaml); bundled tuning when empty")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(c.listCmd())
	rootCmd.AddCommand(c.validateCmd())
	rootCmd.AddCommand(c.simulateCmd())
	rootCmd.AddCommand(c.exportCmd())
	rootCmd.AddCommand(c.watchCmd())
	return rootCmd
}

// loadCatalog reads --catalog, or the bundled catalog. Unknown effect
// kinds are kept and logged.
func (c *cli) loadCatalog() (*config.Catalog, error) {
	var (
		catalog *config.Catalog
		err     error
	)
	if c.catalogPath == "" {
		catalog, err = embedded.DefaultCatalog()
	} else {
		catalog, err = config.LoadCatalog(c.catalogPath)
	}
	if err != nil {
		return nil, err
	}

	for _, where := range catalog.UnknownEffects() {
		c.log().Named("catalog").Warn("unknown effect kind, it will be ignored", zap.String("effect", where))
	}
	return catalog, nil
}

// loadConfig reads --config, or the bundled tuning.
func (c *cli) loadConfig() (*config.EngineConfig, error) {
	if c.configPath == "" {
		return embedded.DefaultEngineConfig()
	}
	return config.LoadEngineConfig(c.configPath)
}

func (c *cli) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}
