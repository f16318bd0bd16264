// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/forms-engine/internal/index"
	"github.com/pdiddy/forms-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the form index to YAML or JSON",
	Long: `Export writes every indexed form's metadata, summary, and artifact paths
to data/index/export.yaml or export.json for consumption outside the CLI.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data")
	format, _ := cmd.Flags().GetString("format")

	store, err := index.NewStore(types.IndexConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(dataDir, "index", "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(dataDir, "index", "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	rootCmd.AddCommand(exportCmd)
}
