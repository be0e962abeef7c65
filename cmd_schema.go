package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/biodex/db"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the database schema (PostGIS extension and tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL(cmd)
		if err != nil {
			return err
		}

		conn, err := sql.Open("postgres", url)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer conn.Close()

		ctx := cmd.Context()
		if drop, _ := cmd.Flags().GetBool("drop"); drop {
			if err := db.DropSchema(ctx, conn); err != nil {
				return err
			}
		}
		if err := db.CreateSchema(ctx, conn); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringP("database-url", "d", "", "PostgreSQL/PostGIS connection string (or DATABASE_URL)")
	schemaCmd.Flags().Bool("drop", false, "Drop all tables first (destroys data)")
}
