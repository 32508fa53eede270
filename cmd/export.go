package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/service"
)

var (
	exportOut  string
	exportDate string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build xlsx reports",
}

type exportFunc func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error)

// exportRun открывает хранилище, строит книгу и сохраняет её в --out или под именем по умолчанию.
func exportRun(build exportFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		periods, err := database.ResolvePeriods(cfg.BaseDir, reqPeriods)
		if err != nil {
			return err
		}
		exp, err := build(cmd, st, periods)
		if err != nil {
			return err
		}
		defer exp.File.Close()

		out := exportOut
		if out == "" {
			out = exp.Name
		}
		if err := exp.File.SaveAs(out); err != nil {
			return fmt.Errorf("save %s: %w", out, err)
		}
		abs, _ := filepath.Abs(out)
		log.Info("report saved", zap.String("file", abs), zap.Int("rows", exp.Rows))
		return nil
	}
}

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "Current list by filter, all columns",
	Args:  cobra.NoArgs,
	RunE: exportRun(func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error) {
		return st.reports.List(cmd.Context(), reqFilter, periods)
	}),
}

var exportPeriodCmd = &cobra.Command{
	Use:   "period",
	Short: "All requests between --from and --to",
	Args:  cobra.NoArgs,
	RunE: exportRun(func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error) {
		return st.reports.Period(cmd.Context(), reqFilter.From, reqFilter.To, periods)
	}),
}

var exportFilteredCmd = &cobra.Command{
	Use:   "filtered",
	Short: "Summary by filters with a selection caption",
	Args:  cobra.NoArgs,
	RunE: exportRun(func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error) {
		return st.reports.Filtered(cmd.Context(), reqFilter, periods)
	}),
}

var exportWeek bool

var exportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Short report for a day (or seven days with --week)",
	Args:  cobra.NoArgs,
	RunE: exportRun(func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error) {
		return st.reports.Summary(cmd.Context(), exportDate, exportWeek, periods)
	}),
}

var exportBlankCmd = &cobra.Command{
	Use:   "blank",
	Short: "Daily information blank grouped by section",
	Args:  cobra.NoArgs,
	RunE: exportRun(func(cmd *cobra.Command, st *store, periods []string) (*service.Export, error) {
		return st.reports.Blank(cmd.Context(), exportDate, periods)
	}),
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOut, "out", "o", "", "путь к файлу xlsx")

	filterFlags(exportListCmd.Flags())
	filterFlags(exportFilteredCmd.Flags())
	for _, c := range []*cobra.Command{exportPeriodCmd, exportSummaryCmd, exportBlankCmd} {
		c.Flags().StringSliceVar(&reqPeriods, "period", nil, "периоды: app_YYYY_MM.db или ГГГГ-ММ; по умолчанию все")
	}
	exportPeriodCmd.Flags().StringVar(&reqFilter.From, "from", "", "дата с")
	exportPeriodCmd.Flags().StringVar(&reqFilter.To, "to", "", "дата по")
	for _, c := range []*cobra.Command{exportSummaryCmd, exportBlankCmd} {
		c.Flags().StringVar(&exportDate, "date", "", "дата отчёта (ГГГГ-ММ-ДД или ДД.ММ.ГГГГ)")
		_ = c.MarkFlagRequired("date")
	}
	exportSummaryCmd.Flags().BoolVar(&exportWeek, "week", false, "семь дней, заканчивающихся --date")

	exportCmd.AddCommand(exportListCmd, exportPeriodCmd, exportFilteredCmd, exportSummaryCmd, exportBlankCmd)
}
