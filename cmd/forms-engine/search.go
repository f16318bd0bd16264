// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/forms-engine/internal/ai"
	"github.com/pdiddy/forms-engine/internal/index"
	"github.com/pdiddy/forms-engine/internal/secrets"
	"github.com/pdiddy/forms-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search processed forms by keyword or meaning",
	Long: `Search queries the SQLite index built by process. The default mode is
FTS5 full-text search over titles, summaries, and raw text. With --semantic
the query is embedded and ranked by cosine similarity against the stored
form embeddings, which requires an OpenAI API key.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	query := strings.Join(args, " ")

	dataDir, _ := cmd.Flags().GetString("data")
	limit, _ := cmd.Flags().GetInt("limit")
	semantic, _ := cmd.Flags().GetBool("semantic")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := index.NewStore(types.IndexConfig{DataDir: dataDir, MaxResults: limit})
	if err != nil {
		return err
	}
	defer store.Close()

	var results []index.SearchResult
	if semantic {
		client, err := ai.NewClient(types.AIConfig{APIKey: secrets.OpenAIKey(loadedSecrets)})
		if err != nil {
			return err
		}
		results, err = store.SearchSemantic(context.Background(), client, query, limit)
		if err != nil {
			return err
		}
	} else {
		if results, err = store.SearchText(context.Background(), query, limit); err != nil {
			return err
		}
	}

	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []index.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-40s  %s\n", "Rank", "Form", "Title", "Summary")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		summary := strings.ReplaceAll(r.Summary, "\n", " ")
		if len(summary) > 40 {
			summary = summary[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-40s  %s\n", i+1, r.FormName, title, summary)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("semantic", false, "rank by embedding similarity instead of full-text match")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
