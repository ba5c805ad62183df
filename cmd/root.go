package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "talawang",
	Short: "Talawang business-trip API server",
	Long: `Talawang is a REST API server for managing official business-trip
requests (kegiatan perjalanan dinas): submission, PPK and Kabalai
approval, personnel cost sheets, and assignment-letter completion.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command (used by tests)
func GetRootCmd() *cobra.Command {
	return rootCmd
}
