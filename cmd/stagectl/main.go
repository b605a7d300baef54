// Command stagectl resolves an applicant's progress stage offline, from a
// status and a JSON list of documents, using the same rules as the API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"partner-crm/internal/catalog"
	"partner-crm/internal/domain"
	"partner-crm/internal/progress"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "stagectl",
		Short: "Inspect applicant progress stages",
		Long: `Inspect applicant progress stages without a running stack.

Examples:
  stagectl resolve --status processing --documents docs.json
  stagectl resolve --status docs_pending --documents - --service tourist_visa < docs.json
  stagectl catalog --catalog ./catalog.yaml
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: built-in catalog)")

	cmd.AddCommand(resolveCmd(&catalogPath))
	cmd.AddCommand(catalogCmd(&catalogPath))
	return cmd
}

type resolveOutput struct {
	Resolution progress.Resolution `json:"resolution"`
	Timeline   progress.Timeline   `json:"timeline"`
	Checklist  *progress.Checklist `json:"checklist,omitempty"`
}

func resolveCmd(catalogPath *string) *cobra.Command {
	var (
		status        string
		documentsPath string
		service       string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the displayed stage for a status and its documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(*catalogPath)
			if err != nil {
				return err
			}

			var documents []domain.Document
			if documentsPath != "" {
				documents, err = readDocuments(cmd.InOrStdin(), documentsPath)
				if err != nil {
					return err
				}
			}

			resolution := progress.Explain(domain.ApplicantStatus(status), documents, cat.Categories())
			out := resolveOutput{
				Resolution: resolution,
				Timeline:   progress.BuildTimeline(cat.StageLabels, resolution.Stage),
			}
			if service != "" {
				required, ok := cat.RequiredFor(service)
				if !ok {
					return fmt.Errorf("unknown service %q", service)
				}
				checklist := progress.BuildChecklist(required, documents)
				out.Checklist = &checklist
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Applicant status (new, docs_pending, processing, approved, rejected, completed)")
	cmd.Flags().StringVar(&documentsPath, "documents", "", "JSON array of documents, or - for stdin")
	cmd.Flags().StringVar(&service, "service", "", "Service type; adds the service checklist to the output")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func catalogCmd(catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the loaded catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(*catalogPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cat)
		},
	}
}

func readDocuments(stdin io.Reader, path string) ([]domain.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var documents []domain.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return documents, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
