// Package cli implements the command-line interface for cubetac.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac/internal/config"
	"github.com/SeamusWaldron/cubetac/internal/logging"
)

const version = "0.1.0"

var (
	// Global flags
	dbPath  string
	verbose bool

	// cfg is loaded before any command runs.
	cfg *config.Config
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cubetac",
	Short: "Tic-tac-toe on a Rubik's-style cube",
	Long: `cubetac - tic-tac-toe played on the front face of a 3x3x3 cube.

On your turn either mark an empty front square or turn one layer of the
cube a quarter. Marks stay on the cubie face they were written on, so
turns carry them around the cube and bring other faces to the front.
Three in a row on the front face wins.

Settings come from CUBETAC_* environment variables or a .env file.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: $CUBETAC_DB_PATH or ~/.cubetac/cubetac.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig reads the environment and applies flag overrides. Logging
// goes to stderr; play redirects it to a file before starting the TUI.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	cfg = c

	return logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat, verbose)
}
