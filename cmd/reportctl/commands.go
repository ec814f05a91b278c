package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/app"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/config"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/export"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

type rootOptions struct {
	configDir string
	tenant    int64
	query     string
	output    string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "reportctl",
		Short:         "Build and inspect booking revenue reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", opts.output)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config", ".", "Directory containing config.yaml")
	flags.Int64Var(&opts.tenant, "tenant", 0, "Tenant (organizer) id the report is scoped to")
	flags.StringVarP(&opts.query, "query", "q", "", "Filter as a URL query, e.g. 'range=monthly&event[]=3'")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(newExplainCmd(opts), newRunCmd(opts), newExportCmd(opts), newMigrateCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *rootOptions) request(kind string) (report.Request, error) {
	values, err := url.ParseQuery(o.query)
	if err != nil {
		return report.Request{}, fmt.Errorf("parse --query: %w", err)
	}
	return report.Request{TenantID: o.tenant, Kind: domain.ReportKind(kind), Values: values}, nil
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <kind>",
		Short: "Print the compiled SQL of a report without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			cfg, err := config.Load(opts.configDir, logger)
			if err != nil {
				return err
			}
			dialect, err := sqldialect.ByName(cfg.Database.Driver)
			if err != nil {
				return err
			}
			svc, err := app.NewService(nil, dialect, cfg.Report, logger)
			if err != nil {
				return err
			}
			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			fam, err := svc.Explain(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, fam.Queries())
			}
			for _, q := range fam.Queries() {
				_, _ = fmt.Fprintf(out, "-- %s\n%s;\n", q.Name, q.SQL)
				for _, name := range q.Args.Names() {
					_, _ = fmt.Fprintf(out, "--   @%s = %v\n", name, q.Args[name])
				}
				_, _ = fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <kind>",
		Short: "Run a report and print its summary and detail page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Service.Build(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			return printReport(cmd.OutOrStdout(), rep)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		path   string
	)
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Write a report with every detail row to an XLSX or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write := export.WriteXLSX
			switch format {
			case "xlsx":
			case "csv":
				write = export.WriteCSV
			default:
				return fmt.Errorf("unsupported export format %q: use 'xlsx' or 'csv'", format)
			}

			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state, _, err := a.Service.Normalize(req)
			if err != nil {
				return err
			}
			rep, err := a.Service.Collect(cmd.Context(), req.Kind, state)
			if err != nil {
				return err
			}

			if path == "" {
				path = export.FileName(rep, format)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := write(f, rep); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bookings to %s\n", len(rep.Rows), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Export format: xlsx or csv")
	cmd.Flags().StringVar(&path, "out", "", "Output file (default: <kind>-report-<start>.<format>)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the booking schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger()
			cfg, err := config.Load(opts.configDir, logger)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == db.DriverSQLite {
				sqlDB, err := db.OpenSQLite(cmd.Context(), cfg.Database.SQLitePath)
				if err != nil {
					return err
				}
				defer func() { _ = sqlDB.Close() }()
				if err := db.ApplySQLiteSchema(cmd.Context(), sqlDB); err != nil {
					return err
				}
			} else if err := db.RunMigrations(cfg.Database, logger); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}

func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	logger := o.logger()
	cfg, err := config.Load(o.configDir, logger)
	if err != nil {
		return nil, err
	}
	return app.Open(cmd.Context(), cfg, false, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, rep *domain.Report) error {
	r := rep.Filter.Range
	_, _ = fmt.Fprintf(w, "%s report, %s to %s", rep.Kind, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	if r.FellBack {
		_, _ = fmt.Fprint(w, " (invalid range, showing this week)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w)

	ids := make([]int64, 0, len(rep.Summary))
	for id := range rep.Summary {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tGROSS\tNET\tDISCOUNT\tTICKETS\tBOOKINGS")
	for _, id := range ids {
		e := rep.Summary[id]
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n", e.EntityID, e.EntityName,
			e.Gross.StringFixed(2), e.Net.StringFixed(2), e.Discount.StringFixed(2), e.Tickets, e.Bookings)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\nBookings %d of %d (page %d)\n", len(rep.Rows), rep.Total, rep.Page)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REFERENCE\tENTITY\tBOOKED AT\tTICKETS\tGROSS\tCOMMISSION\tTICKET TYPES")
	for _, row := range rep.Rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", row.BookingReference, row.EntityName,
			row.BookedAt.Format("2006-01-02 15:04"), row.Tickets, row.Gross.StringFixed(2),
			row.CommissionTotal.StringFixed(2), row.TicketSummary)
	}
	return tw.Flush()
}
