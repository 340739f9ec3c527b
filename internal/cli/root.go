package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moodwatch/internal/app"
	"moodwatch/internal/config"
	"moodwatch/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	apiURL    string
	deviceID  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "moodwatch",
	Short:         "Emotion diary and wearable dashboard client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}
		if deviceID != "" {
			cfg.Device.ID = deviceID
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Override the diary API base URL")
	rootCmd.PersistentFlags().StringVar(&deviceID, "device", "", "Wearable device id (default: any)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
