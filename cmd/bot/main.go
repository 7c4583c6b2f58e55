package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"SwingSentinel/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Swing structure signal bot",
	Long:  `Runs the Telegram bot that answers analysis, signal and level requests and alerts on scheduled scans.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if err := cfg.ValidateTelegram(); err != nil {
			log.Fatalf("config validation: %v", err)
		}
		if err := run(cfg); err != nil {
			log.Fatalf("bot stopped: %v", err)
		}
	},
}

// loadConfig reads --config (or CONFIG_PATH), validates it and sets up logging.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		log.Fatalf("error getting config: %v", err)
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" && !cmd.Flags().Changed("config") {
		cfgPath = v
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("invalid log level %q, using info", cfg.Log.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return cfg
}

func main() {
	rootCmd.PersistentFlags().StringP("config", "c", "configs/config.yaml", "Path to the YAML config file.")
	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}
