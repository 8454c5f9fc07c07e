package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/collage-mcp/internal/collage"
	"github.com/ironsheep/collage-mcp/internal/config"
	"github.com/ironsheep/collage-mcp/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "collage-mcp",
		Short: "Grid collage assembler served over MCP",
		Long: `collage-mcp assembles selected images into a grid collage, one square
cell per image, and exports the result as a data URL ready to cast.

Run without a subcommand it serves MCP over stdin/stdout. Configure it in
your MCP client (e.g., Claude Desktop).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			return initConfig(cfgFile)
		},
		RunE: runServe,
	}

	// Global flags
	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/collage-mcp/config.yaml)")

	root.AddCommand(newServeCmd(), newBuildCmd(), newVersionCmd())
	return root
}

func initConfig(cfgFile string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., COLLAGE_COLLAGE_CELL_SIZE for collage.cell_size
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// newAssembler loads the validated config and builds the logger and
// assembler every subcommand shares. Logs go to errOut.
func newAssembler(errOut io.Writer) (*collage.Assembler, *slog.Logger, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(errOut, cfg.Logging.Level, cfg.Logging.Format)

	opts := cfg.AssemblerOptions()
	opts.Logger = logger.With("component", "collage")
	opts.Sink = collage.LogSink{Logger: logger.With("component", "cast")}

	return collage.New(opts), logger, cfg, nil
}
