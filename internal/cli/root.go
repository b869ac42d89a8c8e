package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	remote     bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:           "lineage",
	Short:         "Family tree relationship engine",
	Long:          "Lineage records people and their parent and partner relationships, and answers ancestry, path and kinship questions.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.lineage/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "Ask a running server instead of opening storage directly")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(personCmd)
	rootCmd.AddCommand(relateCmd)
	rootCmd.AddCommand(unrelateCmd)
	rootCmd.AddCommand(ancestorsCmd)
	rootCmd.AddCommand(descendantsCmd)
	rootCmd.AddCommand(commonCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(kinCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
