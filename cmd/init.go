package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create missing tables",
	Long:  `Create every table the site needs, with its header row, if it does not exist yet. Existing tables are left untouched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return err
		}

		st, err := openStack(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.storage.Initialize(cmd.Context()); err != nil {
			return err
		}
		log.Info("Tables initialized", "backend", cfg.Backend.Type)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
