// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/forms-engine/internal/catalog"
	"github.com/pdiddy/forms-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "forms-engine/0.1"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build the form catalog from the VA Forms API or website",
	Long: `Catalog builds the list of forms the pipeline will process. The fetch
subcommand pages through the VA Forms API; scrape falls back to crawling the
find-forms pages when the API is unavailable. Either way the result is a
catalog JSON file that process reads.`,
}

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the form catalog from the VA Forms API",
	RunE:  runCatalogFetch,
}

var catalogScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the form catalog from the VA find-forms pages",
	RunE:  runCatalogScrape,
}

func runCatalogFetch(cmd *cobra.Command, args []string) error {
	cfg, client := catalogConfigFromFlags(cmd)

	forms, err := catalog.Fetch(context.Background(), client, cfg, os.Stdout)
	if err != nil {
		return err
	}
	return saveCatalog(cfg.CatalogPath, forms)
}

func runCatalogScrape(cmd *cobra.Command, args []string) error {
	cfg, client := catalogConfigFromFlags(cmd)

	forms, err := catalog.Scrape(context.Background(), client, cfg, os.Stdout)
	if err != nil {
		return err
	}
	return saveCatalog(cfg.CatalogPath, forms)
}

func saveCatalog(path string, forms []types.Form) error {
	if err := catalog.Save(path, forms); err != nil {
		return err
	}
	fmt.Printf("Wrote %d forms to %s\n", len(forms), path)
	return nil
}

func catalogConfigFromFlags(cmd *cobra.Command) (types.CatalogConfig, *http.Client) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	perPage, _ := cmd.Flags().GetInt("per-page")
	rps, _ := cmd.Flags().GetFloat64("rps")
	output, _ := cmd.Flags().GetString("output")

	cfg := types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		PerPage:           perPage,
		RequestsPerSecond: rps,
		CatalogPath:       output,
	}
	return cfg, &http.Client{Timeout: cfg.Timeout}
}

func init() {
	catalogCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	catalogCmd.PersistentFlags().Int("per-page", 100, "API page size")
	catalogCmd.PersistentFlags().Float64("rps", 2, "maximum catalog requests per second")
	catalogCmd.PersistentFlags().String("output", "va_forms.json", "catalog output path")

	catalogCmd.AddCommand(catalogFetchCmd)
	catalogCmd.AddCommand(catalogScrapeCmd)

	rootCmd.AddCommand(catalogCmd)
}
