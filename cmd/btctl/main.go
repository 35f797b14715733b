// Package main provides btctl, a command line front end for the BT reports.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/bt-analytics-service/internal/analytics"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/render"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/memory"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/sqlite"
	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const (
	defaultPaperOut = "BT_Analyzed_Question_Paper.csv"
	defaultRunLimit = 20
)

type options struct {
	sheet   string
	history string
	verbose bool
	width   int

	predict bool
	student string
	trees   int
	seed    int64

	out string

	kind  string
	limit int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "btctl",
		Short:        "Bloom's Taxonomy reports for student sheets and question papers",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "worksheet name for .xlsx input (default: first sheet)")
	rootCmd.PersistentFlags().StringVar(&opts.history, "history", "", "SQLite file to record report runs in")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().IntVar(&opts.width, "width", 0, "chart width (default: terminal width)")

	rootCmd.AddCommand(newWeeklyCmd(opts))
	rootCmd.AddCommand(newMonthlyCmd(opts))
	rootCmd.AddCommand(newPaperCmd(opts))
	rootCmd.AddCommand(newRunsCmd(opts))

	return rootCmd
}

func newWeeklyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly FILE",
		Short: "Per-level and overall accuracy for one week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, sm services.ServiceManager) error {
				req, closeFile, err := openUpload(args[0], opts.sheet)
				if err != nil {
					return err
				}
				defer closeFile()

				resp, err := sm.Weekly().Generate(ctx, req)
				if err != nil {
					return err
				}
				return printWeekly(cmd.OutOrStdout(), resp.WeeklyReport, opts.chartWidth())
			})
		},
	}
}

func newMonthlyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly FILE",
		Short: "Four-week aggregate with recommendations and optional label prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, sm services.ServiceManager) error {
				req, closeFile, err := openUpload(args[0], opts.sheet)
				if err != nil {
					return err
				}
				defer closeFile()

				resp, err := sm.Monthly().Generate(ctx, req, &services.MonthlyReportQuery{
					Predict: opts.predict,
					Student: opts.student,
				})
				if err != nil {
					return err
				}
				return printMonthly(cmd.OutOrStdout(), resp, opts.chartWidth())
			})
		},
	}

	cmd.Flags().BoolVar(&opts.predict, "predict", false, "train on Monthly_Label and predict every student")
	cmd.Flags().StringVar(&opts.student, "student", "", "show the weekly trend of this student")
	cmd.Flags().IntVar(&opts.trees, "trees", predict.DefaultTrees, "trees in the random forest")
	cmd.Flags().Int64Var(&opts.seed, "seed", predict.DefaultSeed, "random forest seed")

	return cmd
}

func newPaperCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paper FILE",
		Short: "Tag a question paper with BT levels and score its difficulty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, sm services.ServiceManager) error {
				req, closeFile, err := openUpload(args[0], opts.sheet)
				if err != nil {
					return err
				}
				defer closeFile()

				resp, err := sm.Paper().Generate(ctx, req)
				if err != nil {
					return err
				}
				if err := printPaper(cmd.OutOrStdout(), resp.PaperReport, opts.chartWidth()); err != nil {
					return err
				}
				if opts.out == "" {
					return nil
				}

				// The upload was consumed; export reads the file again.
				exportReq, closeExport, err := openUpload(args[0], opts.sheet)
				if err != nil {
					return err
				}
				defer closeExport()

				file, err := sm.Paper().Export(ctx, exportReq)
				if err != nil {
					return err
				}
				if err := os.WriteFile(opts.out, file.Data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", opts.out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nTagged paper written to %s\n", opts.out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the tagged paper as CSV (e.g. "+defaultPaperOut+")")

	return cmd
}

func newRunsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List report runs recorded with --history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.history == "" {
				return fmt.Errorf("--history is required")
			}
			return withManager(cmd, opts, func(ctx context.Context, sm services.ServiceManager) error {
				resp, err := sm.History().ListRuns(ctx, &services.RunListQuery{
					Kind:  opts.kind,
					Limit: opts.limit,
				})
				if err != nil {
					return err
				}
				return printRuns(cmd.OutOrStdout(), resp)
			})
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "weekly, monthly or paper")
	cmd.Flags().IntVar(&opts.limit, "limit", defaultRunLimit, "number of runs to show")

	return cmd
}

// withManager builds the services for one command and shuts them down after
func withManager(cmd *cobra.Command, opts *options, fn func(ctx context.Context, sm services.ServiceManager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var repo repositories.Repository = memory.NewRepository()
	if opts.history != "" {
		sqliteRepo, err := sqlite.NewRepository(opts.history)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		repo = sqliteRepo
	}

	sm := services.NewDefaultServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Predictor: predict.NewRandomForest(opts.trees, opts.seed),
	}, logger, validator.New())
	if err := sm.Initialize(ctx); err != nil {
		repo.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	defer sm.Shutdown(shutdownCtx)

	return fn(ctx, sm)
}

func openUpload(path, sheetName string) (*services.ReportRequest, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	req := &services.ReportRequest{
		File: services.UploadRequest{
			FileName: filepath.Base(path),
			Size:     info.Size(),
			Sheet:    sheetName,
		},
		Data:        f,
		RequestedBy: os.Getenv("USER"),
	}
	return req, func() { f.Close() }, nil
}

func (o *options) chartWidth() int {
	if o.width > 0 {
		return o.width
	}
	return render.TerminalWidth()
}

func printWeekly(w io.Writer, report *models.WeeklyReport, width int) error {
	if err := render.Table(w, analytics.WeeklyTable(report), analytics.WeeklyNumericColumns()...); err != nil {
		return err
	}

	bars := make([]render.Bar, len(report.Rows))
	for i, r := range report.Rows {
		bars[i] = render.Bar{Label: r.Student, Value: r.OverallAccuracy}
	}
	fmt.Fprintln(w)
	return render.Bars(w, "Overall accuracy (%)", bars, 100, width)
}

func printMonthly(w io.Writer, resp *services.MonthlyReportResponse, width int) error {
	if err := render.Table(w, analytics.MonthlyTable(resp.MonthlyReport), analytics.MonthlyNumericColumns()...); err != nil {
		return err
	}
	printMessages(w, "Note", resp.Notices)
	printMessages(w, "Warning", resp.Warnings)

	if len(resp.Trend) == 0 {
		return nil
	}
	bars := make([]render.Bar, len(resp.Trend))
	for i, p := range resp.Trend {
		bars[i] = render.Bar{Label: p.Week, Value: p.Accuracy}
	}
	fmt.Fprintln(w)
	return render.Bars(w, "Weekly trend (%)", bars, 100, width)
}

func printPaper(w io.Writer, report *models.PaperReport, width int) error {
	rows := make([][]string, len(report.Questions))
	for i, q := range report.Questions {
		rows[i] = []string{q.Text, string(q.Level), strconv.Itoa(q.Score)}
	}
	questions := sheet.NewTable([]string{analytics.ColumnQuestionText, analytics.ColumnBTLevel, analytics.ColumnBTScore}, rows)
	if err := render.Table(w, questions, analytics.ColumnBTScore); err != nil {
		return err
	}
	printMessages(w, "Note", report.Notices)

	fmt.Fprintln(w)
	if err := render.Table(w, analytics.SummaryTable(report.Summary), analytics.SummaryNumericColumns()...); err != nil {
		return err
	}

	bars := make([]render.Bar, len(report.Summary.Levels))
	for i, l := range report.Summary.Levels {
		bars[i] = render.Bar{Label: string(l.Level), Value: l.Percentage}
	}
	fmt.Fprintln(w)
	if err := render.Bars(w, "BT score distribution (%)", bars, 100, width); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal BT score: %d\n", report.Summary.TotalScore)
	fmt.Fprintf(w, "Difficulty: %s\n", render.Difficulty(report.Summary.Difficulty))
	return nil
}

func printRuns(w io.Writer, resp *services.RunListResponse) error {
	rows := make([][]string, len(resp.Runs))
	for i, r := range resp.Runs {
		rows[i] = []string{
			r.ID,
			string(r.Kind),
			r.SourceName,
			strconv.Itoa(r.RowCount),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	t := sheet.NewTable([]string{"ID", "Kind", "Source", "Rows", "Created"}, rows)
	if err := render.Table(w, t, "Rows"); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d of %d runs\n", len(resp.Runs), resp.Total)
	return nil
}

func printMessages(w io.Writer, prefix string, messages []string) {
	for _, m := range messages {
		fmt.Fprintf(w, "%s: %s\n", prefix, m)
	}
}
