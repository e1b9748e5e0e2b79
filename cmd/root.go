package cmd

import (
	"github.com/spf13/cobra"

	"ecohub-backend/config"
	"ecohub-backend/log"
)

var (
	envFile string
	port    string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "ecohub",
	Short:         "EcoHub events and rewards API",
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the env file and environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if !config.LoadEnv(envFile) {
		log.WarnLog(".env file not found, using system environment variables", "file", envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debug
	}
	log.SetDebug(cfg.Debug)
	return cfg, nil
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file to load environment variables from")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging, including SQL")
	rootCmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides APP_PORT)")
	serveCmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides APP_PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the command line; with no subcommand it serves.
func Execute() error {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		log.ErrorLog("command failed", "err", err)
		return err
	}
	return nil
}
