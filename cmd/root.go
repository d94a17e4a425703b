package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/version"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	LogFile    string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogFile, "log-file", "", "File to write logs to")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir, ~/.giveaways, /etc/giveaways)")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "giveaways",
	Short: "Giveaways is the backend of the Pubzy community giveaway site",
	Long:  `Giveaways serves the community site API and keeps users, entries, giveaways and winners in a spreadsheet.`,
	Example: `giveaways serve --config config.yml
  giveaways init -c /path/to/config.yml
  giveaways stats --log-level debug`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		setLogLevel(rootCmdPersistentFlags.LogLevel)
		logToFile()
	},
}

func setLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// logToFile mirrors log output to --log-file when set.
func logToFile() {
	path := rootCmdPersistentFlags.LogFile
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec
	if err != nil {
		log.Error("failed to open log file", "path", path, "error", err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.Debug("Mirroring logs to file", "path", path)
}

// Execute runs the root command with fang's help and error rendering.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd, fang.WithVersion(version.Version))
}
