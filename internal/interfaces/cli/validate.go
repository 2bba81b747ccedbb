package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toxscope/toxscope/internal/bootstrap"
	"github.com/toxscope/toxscope/internal/domain/compound"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
)

// ValidationReport summarises a dataset validation run.
type ValidationReport struct {
	Compounds       int      `json:"compounds"`
	Descriptors     int      `json:"descriptors"`
	EmbeddingIDs    int      `json:"embedding_ids"`
	UnmatchedIDs    []string `json:"unmatched_ids,omitempty"`
	MissingDoseGrid []string `json:"missing_dose_grid,omitempty"`
}

// NewValidateCmd creates the `validate` command: it loads every configured
// dataset resource and reports structural problems without starting a server.
func NewValidateCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configured dataset resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}

			fetcher, err := bootstrap.NewFetcher(cfg, log, nil)
			if err != nil {
				return err
			}
			compounds, stats, err := bootstrap.LoadDataset(cmd.Context(), cfg, fetcher, log)
			if err != nil {
				return err
			}

			report := buildReport(compounds, stats, nil)

			// The embedding id list is optional; a dataset without an
			// embedding view is still valid.
			if raw, fetchErr := fetcher.Fetch(cmd.Context(), cfg.Embedding.IDsResource); fetchErr == nil {
				ids := splitIDList(string(raw))
				report = buildReport(compounds, stats, ids)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: embedding id list unavailable: %v\n", fetchErr)
			}

			if err := printReport(cmd, opts, report); err != nil {
				return err
			}
			if len(report.UnmatchedIDs) > 0 {
				return errors.Validation(fmt.Sprintf("%d embedding ids have no matching compound", len(report.UnmatchedIDs)))
			}
			return nil
		},
	}
	return cmd
}

func buildReport(compounds []ctypes.Compound, stats ctypes.StatsMap, ids []string) ValidationReport {
	report := ValidationReport{
		Compounds:    len(compounds),
		Descriptors:  len(stats),
		EmbeddingIDs: len(ids),
	}

	for i := range compounds {
		if compound.ParseSeries(compounds[i].Doses) == nil {
			report.MissingDoseGrid = append(report.MissingDoseGrid, compounds[i].Name)
		}
	}

	if len(ids) > 0 {
		index := compound.IndexByName(compounds)
		for _, id := range ids {
			if _, ok := index[id]; !ok {
				report.UnmatchedIDs = append(report.UnmatchedIDs, id)
			}
		}
	}
	return report
}

func splitIDList(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func printReport(cmd *cobra.Command, opts *RootOptions, report ValidationReport) error {
	if strings.EqualFold(opts.Output, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "compounds:      %d\n", report.Compounds)
	fmt.Fprintf(out, "descriptors:    %d\n", report.Descriptors)
	fmt.Fprintf(out, "embedding ids:  %d\n", report.EmbeddingIDs)
	if len(report.MissingDoseGrid) > 0 {
		fmt.Fprintf(out, "missing dose grid (%d): %s\n", len(report.MissingDoseGrid), strings.Join(report.MissingDoseGrid, ", "))
	}
	if len(report.UnmatchedIDs) > 0 {
		fmt.Fprintf(out, "unmatched ids (%d): %s\n", len(report.UnmatchedIDs), strings.Join(report.UnmatchedIDs, ", "))
	}
	return nil
}
