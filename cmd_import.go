package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/danielhkuo/biodex/speciesimport"
)

var importCmd = &cobra.Command{
	Use:   "import --kind species|bioregions FILE",
	Short: "Load species ranges or bioregions from a GeoJSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, err := speciesimport.ParseKind(kindFlag)
		if err != nil {
			return err
		}
		url, err := databaseURL(cmd)
		if err != nil {
			return err
		}

		im, err := speciesimport.Open(cmd.Context(), url)
		if err != nil {
			return err
		}
		defer im.Close()

		report, err := im.ImportFile(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "read %d, imported %d, skipped %d\n",
			report.Read, report.Imported, report.SkippedTotal())
		for reason, n := range report.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", reason, n)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("kind", string(speciesimport.KindSpecies), "species or bioregions")
	importCmd.Flags().StringP("database-url", "d", "", "PostgreSQL/PostGIS connection string (or DATABASE_URL)")
}

// databaseURL reads --database-url, falling back to DATABASE_URL.
func databaseURL(cmd *cobra.Command) (string, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlag("database-url", cmd.Flags().Lookup("database-url")); err != nil {
		return "", err
	}
	url := v.GetString("database-url")
	if url == "" {
		return "", fmt.Errorf("database URL required (use -d or DATABASE_URL env)")
	}
	return url, nil
}
