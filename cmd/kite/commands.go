package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kitehq/kite/internal/config"
	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/ingest"
	"github.com/kitehq/kite/internal/knowledge"
	"github.com/kitehq/kite/internal/storage"
	"github.com/kitehq/kite/internal/triage"
)

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		for _, a := range args[1:] {
			query += " " + a
		}
		maxResults, _ := cmd.Flags().GetInt("max-results")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/search", map[string]any{
			"query":       query,
			"max_results": maxResults,
		})
		if err != nil {
			return err
		}

		var result struct {
			Results      []knowledge.SearchResult `json:"results"`
			TotalResults int                      `json:"total_results"`
			SearchTimeMs float64                  `json:"search_time_ms"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.TotalResults == 0 {
			printWarning("No results for %q", query)
			return nil
		}

		for i, r := range result.Results {
			fmt.Printf("%s %s\n", tint(ansiBold, fmt.Sprintf("%d.", i+1)), r.Title)
			fmt.Printf("   relevance %.3f | source %s\n", r.Relevance, r.Source)
			fmt.Printf("   %s\n\n", r.Content)
		}
		printSuccess("%d results in %.2fms", result.TotalResults, result.SearchTimeMs)
		return nil
	},
}

// --- classify ---

var classifyCmd = &cobra.Command{
	Use:   "classify <description>",
	Short: "Classify an incident and suggest procedures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := args[0]
		for _, a := range args[1:] {
			description += " " + a
		}
		severity, _ := cmd.Flags().GetString("severity")
		priority, _ := cmd.Flags().GetString("priority")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/incidents/classify", map[string]any{
			"description": description,
			"severity":    severity,
			"priority":    priority,
		})
		if err != nil {
			return err
		}

		var report triage.Report
		if err := decodeJSON(resp, &report); err != nil {
			return err
		}

		printStatus("Incident", "%s", report.IncidentID)
		printStatus("Category", "%s (confidence %.2f)", report.Category, report.Confidence)
		printStatus("Assigned to", "%s", report.AutoAssignedTo)
		printStatus("ETA", "%s", report.EstimatedResolution)
		if len(report.SuggestedProcedures) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), tint(ansiBold, "  Procedures:"))
			for _, p := range report.SuggestedProcedures {
				fmt.Fprintf(cmd.ErrOrStderr(), "    - %s\n", p)
			}
		}
		if len(report.SimilarIncidents) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), tint(ansiBold, "  Similar incidents:"))
			for _, s := range report.SimilarIncidents {
				fmt.Fprintf(cmd.ErrOrStderr(), "    - %s %s (%.2f, resolved in %d minutes)\n", s.ID, s.Title, s.Similarity, s.ResolutionMins)
			}
		}
		return nil
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Load documents from a file or directory into the knowledge base",
	Long: `Load documents into the knowledge base.

Supported formats: .txt, .md, .html, .pdf.

Examples:
  kite ingest ./runbooks/
  kite ingest ./guides/vpn-setup.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		loader := ingest.NewLoader()

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var docs []index.Document
		if info.IsDir() {
			docs, err = loader.LoadDir(path)
			if err != nil {
				return err
			}
		} else {
			doc, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			printWarning("no supported documents found in %s", path)
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		corpus := knowledge.NewCorpus(store, index.NewLexical())
		for _, doc := range docs {
			if err := corpus.Add(doc); err != nil {
				printError("failed to save %q: %v", doc.Title, err)
				continue
			}
			printStep("Added %q (%s)", doc.Title, doc.ID)
		}
		printSuccess("Ingested %d documents; restart the server to index them", len(docs))
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("max-results", 5, "maximum number of results")
	classifyCmd.Flags().String("severity", "medium", "incident severity: critical, high, medium, or low")
	classifyCmd.Flags().String("priority", "normal", "incident priority label")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", tint(ansiBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
