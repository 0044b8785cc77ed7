package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/salesdash/internal/adapters/beststore"
	app "github.com/okian/salesdash/internal/app"
	"github.com/okian/salesdash/internal/config"
	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/report"
)

const dateLayout = "2006-01-02"

func newScoreCmd() *cobra.Command {
	var salesFile, hrFile, format string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a local sales export and print the ranking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return score(cmd.Context(), cmd.OutOrStdout(), salesFile, hrFile, format)
		},
	}
	cmd.Flags().StringVar(&salesFile, "sales", "", "semicolon-delimited sales export (required)")
	cmd.Flags().StringVar(&hrFile, "hr", "", "comma-delimited HR directory export")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv or xlsx")
	_ = cmd.MarkFlagRequired("sales")
	return cmd
}

func score(ctx context.Context, out io.Writer, salesFile, hrFile, format string) error {
	f, err := os.Open(salesFile)
	if err != nil {
		return fmt.Errorf("open sales file: %w", err)
	}
	defer f.Close()

	rows, err := beststore.ParseExport(f)
	if err != nil {
		return err
	}

	var dir *hrdir.Directory
	if hrFile != "" {
		dir, err = app.FileHRSource{DirectoryFile: hrFile}.Load(ctx)
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	snap, err := app.New(app.WithEngine(engine(cfg.Scoring))).ScoreRows(ctx, rows, dir)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return report.WriteCSV(out, snap.Result.Employees)
	case "xlsx":
		return report.WriteXLSX(out, snap.Result.Employees)
	default:
		return writeTable(out, snap.Result.Employees)
	}
}

// writeTable prints the ranking as aligned columns.
func writeTable(out io.Writer, employees []model.EnrichedEmployee) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\t"+strings.Join(report.Header, "\t")+"\tScore")
	for i, row := range report.Rows(employees) {
		scoreCol := ""
		if r := employees[i].Rating; r != nil {
			scoreCol = strconv.FormatFloat(r.Score, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, strings.Join(row, "\t"), scoreCol)
	}
	return tw.Flush()
}

// parseRange reads YYYY-MM-DD dates; an empty to means a single day.
func parseRange(from, to string) (model.DateRange, error) {
	var rng model.DateRange
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return rng, fmt.Errorf("%w: from: %w", app.ErrInvalidRange, err)
	}
	rng.From = f
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return rng, fmt.Errorf("%w: to: %w", app.ErrInvalidRange, err)
		}
		rng.To = t
	}
	return rng, nil
}

func filtersFor(cfg *config.Config) model.Filters {
	return model.Filters{DocTypes: cfg.Sales.DocTypes, CompareWithPrevious: cfg.Scoring.CompareWithPrevious}
}
