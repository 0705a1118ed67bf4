// Package main provides the smart_ats command: the web UI server and a batch CLI evaluator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smart_ats",
	Short: "Smart ATS résumé evaluator",
	Long: "Smart ATS compares a résumé PDF against a job description with Gemini and reports the match, " +
		"missing keywords, a profile summary, grammar corrections, job recommendations and HR insights.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
