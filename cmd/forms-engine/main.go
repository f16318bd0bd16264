// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the forms-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/forms-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the forms-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "forms-engine",
	Short: "Batch pipeline for VA form PDFs: download, summarize, embed",
	Long: `forms-engine maintains a searchable knowledge base of VA forms. It fetches
the form catalog, downloads each form's PDF, extracts the text and fillable
fields, and uses an OpenAI-compatible API to clean, summarize, and embed the
content. Artifacts land on disk next to a consolidated JSON index and a
SQLite full-text index.

Each stage is a subcommand: catalog, process, search, and export. Runs are
resumable; forms with an existing summary are skipped.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./forms-engine.yaml or ~/.config/forms-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data", "data", "base directory for pipeline output (raw/, metadata/, summaries/, embeddings/, index/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("forms-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "forms-engine"))
		}
	}

	viper.SetEnvPrefix("FORMS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
