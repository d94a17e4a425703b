package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show community statistics",
	Long:  `Display the number of users, counter entries, giveaways and winners.`,
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

		stats, err := st.storage.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Community Statistics:")
		fmt.Fprintf(out, "Users: %s\n", humanize.Comma(int64(stats.Users)))
		fmt.Fprintf(out, "Counter Entries: %s\n", humanize.Comma(int64(stats.Entries)))
		fmt.Fprintf(out, "Giveaways: %s (%s active)\n", humanize.Comma(int64(stats.Giveaways)), humanize.Comma(int64(stats.ActiveGiveaways)))
		fmt.Fprintf(out, "Giveaway Entries: %s\n", humanize.Comma(int64(stats.GiveawayEntries)))
		fmt.Fprintf(out, "Winners: %s\n", humanize.Comma(int64(stats.Winners)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
