// Package main provides the resume_review CLI: diff two resume versions,
// apply review decisions and serve the review API.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-review/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "resume_review",
	Short: "Review changes between two resume versions",
	Long: "resume_review computes a reviewable list of differences between a resume and its rewritten version, " +
		"records accept/reject decisions and produces the final document.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// settings resolves the effective configuration: the optional config file,
// then built-in defaults for anything it leaves unset, then the environment.
func settings() (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Verbose {
		verbose = true
		log.SetOutput(os.Stderr)
	}
	return cfg.MergeWithDefaults(config.Defaults()).FromEnv(), nil
}
