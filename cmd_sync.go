package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/biodex/auth"
	"github.com/danielhkuo/biodex/discoverysync"
	"github.com/danielhkuo/biodex/localcache"
)

var syncCmd = &cobra.Command{
	Use:   "sync --cache FILE --player UUID --server URL",
	Short: "Migrate a local discovery cache to the server (once per player)",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		cachePath, _ := flags.GetString("cache")
		playerFlag, _ := flags.GetString("player")
		serverURL, _ := flags.GetString("server")
		batch, _ := flags.GetInt("batch")

		player, err := auth.ParsePlayerID(playerFlag)
		if err != nil {
			return err
		}

		cache, err := localcache.Open(cachePath)
		if err != nil {
			return err
		}
		defer cache.Close()

		client := discoverysync.NewClient(serverURL, nil)
		res, err := discoverysync.Run(cmd.Context(), cache, client, player, discoverysync.Options{BatchSize: batch})
		if err != nil {
			return err
		}

		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "already migrated")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "submitted %d, migrated %d\n", res.Submitted, res.Migrated)
		return nil
	},
}

func init() {
	syncCmd.Flags().String("cache", "biodex-cache.db", "Local discovery cache (SQLite)")
	syncCmd.Flags().String("player", "", "Player UUID")
	syncCmd.Flags().String("server", "http://localhost:3318", "API server base URL")
	syncCmd.Flags().Int("batch", discoverysync.DefaultBatchSize, "Discoveries per request; shrunk automatically if the server's max_migrate_batch is lower")
	_ = syncCmd.MarkFlagRequired("player")
}
