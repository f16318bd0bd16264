// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/forms-engine/internal/ai"
	"github.com/pdiddy/forms-engine/internal/catalog"
	"github.com/pdiddy/forms-engine/internal/index"
	"github.com/pdiddy/forms-engine/internal/process"
	"github.com/pdiddy/forms-engine/internal/secrets"
	"github.com/pdiddy/forms-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the pipeline over every form in the catalog",
	Long: `Process walks the form catalog and, for each form, downloads the PDF,
extracts its text and fillable fields, cleans the text, summarizes it, and
embeds both the summary and the raw text. Artifacts are written under the
data directory; failures go to missed_forms.txt and never abort the run.

Forms with an existing summary are skipped, so an interrupted run can simply
be re-run. Use --start-id to resume at a specific catalog entry.`,
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	dataDir, _ := cmd.Flags().GetString("data")
	startID, _ := cmd.Flags().GetString("start-id")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	forms, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	if startID != "" {
		if forms, err = catalog.Resume(forms, startID); err != nil {
			return err
		}
	}
	if len(forms) == 0 {
		fmt.Println("Nothing to process.")
		return nil
	}

	cfg, err := processConfigFromFlags(cmd, dataDir, startID)
	if err != nil {
		return err
	}

	client, err := ai.NewClient(cfg.AI)
	if err != nil {
		return err
	}

	p := &process.Processor{
		Client: &http.Client{Timeout: cfg.Acquisition.Timeout},
		AI:     client,
		Cfg:    cfg,
	}

	store, err := index.NewStore(types.IndexConfig{DataDir: dataDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: SQLite index unavailable, continuing without it: %v\n", err)
	} else {
		p.Store = store
		defer store.Close()
	}

	if !noProgress {
		bar := progressbar.Default(int64(len(forms)), "processing forms")
		p.OnFormDone = func() { bar.Add(1) }
	}

	summary := p.Run(context.Background(), forms, os.Stdout)
	if summary.Failed > 0 {
		// Failures are already in missed_forms.txt; a partial run is still a
		// successful run.
		fmt.Fprintf(os.Stderr, "%d form(s) recorded in %s\n",
			summary.Failed, process.NewFailureLog(dataDir).Path())
	}
	return nil
}

func processConfigFromFlags(cmd *cobra.Command, dataDir, startID string) (types.ProcessConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	model, _ := cmd.Flags().GetString("model")
	embeddingModel, _ := cmd.Flags().GetString("embedding-model")
	baseURL, _ := cmd.Flags().GetString("base-url")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")

	key := secrets.OpenAIKey(loadedSecrets)
	if key == "" {
		return types.ProcessConfig{}, fmt.Errorf("no OpenAI API key: set OPENAI_API_KEY or create .secrets/%s", secrets.KeyOpenAI)
	}

	return types.ProcessConfig{
		Acquisition: types.AcquisitionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			DownloadDelay: delay,
			DataDir:       dataDir,
		},
		AI: types.AIConfig{
			Model:          model,
			EmbeddingModel: embeddingModel,
			APIKey:         key,
			BaseURL:        baseURL,
			MaxRetries:     maxRetries,
		},
		StartID: startID,
	}, nil
}

func init() {
	processCmd.Flags().String("catalog", "va_forms.json", "catalog JSON produced by the catalog command")
	processCmd.Flags().String("start-id", "", "resume processing at this catalog id (inclusive)")
	processCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	processCmd.Flags().Duration("delay", 0, "delay between consecutive forms (default 1s)")
	processCmd.Flags().String("model", "", "chat model for cleanup and summarization (default gpt-4o-mini)")
	processCmd.Flags().String("embedding-model", "", "embedding model (default text-embedding-3-small)")
	processCmd.Flags().String("base-url", "", "override the OpenAI-compatible API endpoint")
	processCmd.Flags().Int("max-retries", 0, "retry attempts for failed AI calls (default 3)")
	processCmd.Flags().Bool("no-progress", false, "disable the progress bar")

	rootCmd.AddCommand(processCmd)
}
