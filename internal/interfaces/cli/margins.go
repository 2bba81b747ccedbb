package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toxscope/toxscope/internal/bootstrap"
	"github.com/toxscope/toxscope/internal/domain/safety"
	"github.com/toxscope/toxscope/pkg/errors"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// marginRow is one line of `margins` output.
type marginRow struct {
	Name      string             `json:"name"`
	Aggregate *float64           `json:"aggregate_margin,omitempty"`
	Class     etypes.MarginClass `json:"class"`
}

// NewMarginsCmd creates the `margins` command: offline safety-margin
// analysis of a dataset at a fixed dose, without starting a server.
func NewMarginsCmd(opts *RootOptions) *cobra.Command {
	var (
		dose      float64
		onlyClass string
	)

	cmd := &cobra.Command{
		Use:   "margins",
		Short: "Compute aggregate safety margins at a given dose",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dose <= 0 {
				return errors.Validation("dose must be positive")
			}

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
			compounds, _, err := bootstrap.LoadDataset(cmd.Context(), cfg, fetcher, log)
			if err != nil {
				return err
			}

			margins := safety.MarginMap(compounds, dose)
			rows := make([]marginRow, 0, len(compounds))
			for i := range compounds {
				m := margins[compounds[i].Name]
				row := marginRow{Name: compounds[i].Name, Class: m.Class}
				if m.Defined {
					agg := m.Aggregate
					row.Aggregate = &agg
				}
				if onlyClass != "" && !strings.EqualFold(onlyClass, string(m.Class)) {
					continue
				}
				rows = append(rows, row)
			}

			// Narrowest margins first; undefined margins sort last.
			sort.SliceStable(rows, func(i, j int) bool {
				switch {
				case rows[i].Aggregate == nil:
					return false
				case rows[j].Aggregate == nil:
					return true
				default:
					return *rows[i].Aggregate < *rows[j].Aggregate
				}
			})

			return printMargins(cmd, opts, rows)
		},
	}

	cmd.Flags().Float64VarP(&dose, "dose", "d", 10, "therapeutic dose (µM)")
	cmd.Flags().StringVar(&onlyClass, "class", "", "only show one margin class (broad, moderate, narrow, alert)")
	return cmd
}

func printMargins(cmd *cobra.Command, opts *RootOptions, rows []marginRow) error {
	if strings.EqualFold(opts.Output, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		agg := "n/a"
		if r.Aggregate != nil {
			agg = fmt.Sprintf("%.2f", *r.Aggregate)
		}
		table = append(table, []string{r.Name, agg, string(r.Class)})
	}
	fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"NAME", "MARGIN", "CLASS"}, table))
	return nil
}
