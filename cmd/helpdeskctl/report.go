package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/postgres"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/services"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print period reports",
	Long: `Print the same period reports the API serves.

Reports run with the permissions of the user given by --as. Technicians
and managers only see their own team.`,
}

var reportAnalystsCmd = &cobra.Command{
	Use:   "analysts",
	Short: "Tickets closed per analyst",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, reports ports.ReportService, caller *domain.User, params ports.ReportParams) (report, error) {
			rows, err := reports.ByAnalyst(ctx, caller, params)
			if err != nil {
				return report{}, err
			}
			out := report{Headers: []string{"ANALYST", "CLOSED"}, Data: rows}
			for _, row := range rows {
				out.Rows = append(out.Rows, []string{row.Name, strconv.FormatInt(row.Count, 10)})
			}
			return out, nil
		})
	},
}

var reportCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Mean resolution time per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, reports ports.ReportService, caller *domain.User, params ports.ReportParams) (report, error) {
			rows, err := reports.ByCategory(ctx, caller, params)
			if err != nil {
				return report{}, err
			}
			out := report{Headers: []string{"CATEGORY", "AVG HOURS"}, Data: rows}
			for _, row := range rows {
				out.Rows = append(out.Rows, []string{row.Category, strconv.FormatFloat(row.AvgHours, 'f', 2, 64)})
			}
			return out, nil
		})
	},
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Tickets opened per month of the year",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, reports ports.ReportService, caller *domain.User, params ports.ReportParams) (report, error) {
			rows, err := reports.ByMonth(ctx, caller, params)
			if err != nil {
				return report{}, err
			}
			out := report{Headers: []string{"MONTH", "OPENED"}, Data: rows}
			for _, row := range rows {
				out.Rows = append(out.Rows, []string{strconv.Itoa(row.Month), strconv.FormatInt(row.Count, 10)})
			}
			return out, nil
		})
	},
}

func init() {
	reportCmd.PersistentFlags().String("as", "", "Login of the user the report runs as (required)")
	reportCmd.PersistentFlags().Int("year", 0, "Report year (defaults to the current year)")
	reportCmd.PersistentFlags().Int("month", 0, "Report month, 1-12 (defaults to the current month)")
	reportCmd.PersistentFlags().Int64("team", 0, "Restrict to a team (administrators only)")
	reportCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table or json")
	_ = reportCmd.MarkPersistentFlagRequired("as")

	reportCmd.AddCommand(reportAnalystsCmd)
	reportCmd.AddCommand(reportCategoriesCmd)
	reportCmd.AddCommand(reportMonthlyCmd)
}

// report is a rendered result: Data for JSON output, Rows for the table.
type report struct {
	Headers []string
	Rows    [][]string
	Data    any
}

type reportFunc func(ctx context.Context, reports ports.ReportService, caller *domain.User, params ports.ReportParams) (report, error)

func runReport(cmd *cobra.Command, fn reportFunc) error {
	flags := cmd.Flags()
	login, err := flags.GetString("as")
	if err != nil {
		return err
	}
	format, err := flags.GetString("output")
	if err != nil {
		return err
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}
	params, err := reportParams(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	caller, err := services.NewCallerService(postgres.NewUserRepository(pool)).ResolveCaller(ctx, 0, login)
	if err != nil {
		return fmt.Errorf("resolving user %q: %w", login, err)
	}

	out, err := fn(ctx, services.NewReportService(postgres.NewTicketRepository(pool), nil), caller, params)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), format, out)
}

func reportParams(cmd *cobra.Command) (ports.ReportParams, error) {
	flags := cmd.Flags()
	year, err := flags.GetInt("year")
	if err != nil {
		return ports.ReportParams{}, err
	}
	month, err := flags.GetInt("month")
	if err != nil {
		return ports.ReportParams{}, err
	}
	team, err := flags.GetInt64("team")
	if err != nil {
		return ports.ReportParams{}, err
	}

	if year != 0 && (year < 1970 || year > 9999) {
		return ports.ReportParams{}, fmt.Errorf("invalid year %d", year)
	}
	if month != 0 && (month < 1 || month > 12) {
		return ports.ReportParams{}, fmt.Errorf("invalid month %d", month)
	}

	params := ports.ReportParams{Year: year, Month: month}
	if team > 0 {
		params.TeamID = &team
	}
	return params, nil
}

func writeReport(w io.Writer, format string, out report) error {
	if format == "json" {
		data := out.Data
		if out.Rows == nil {
			data = []struct{}{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range out.Headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range out.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
