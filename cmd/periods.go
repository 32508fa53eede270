package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/config"
	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/model"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List monthly database files, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		active := filepath.Base(database.PathFor(cfg.BaseDir, time.Now()))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, p := range database.ListPeriods(cfg.BaseDir) {
			name := filepath.Base(p)
			mark := ""
			if name == active {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark, name, database.PeriodLabel(name))
		}
		return w.Flush()
	},
}

var setDirCmd = &cobra.Command{
	Use:   "set-dir <path>",
	Short: "Save the database directory next to the executable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		if err := config.SaveBaseDir(cfg.SidecarPath, dir); err != nil {
			return err
		}
		log.Info("database directory saved", zap.String("dir", dir), zap.String("sidecar", cfg.SidecarPath))
		return nil
	},
}

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print typical problem texts for a category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		category, err := model.ParseCategory(catalogCategory)
		if err != nil {
			return err
		}
		for _, p := range model.ProblemCatalog(category) {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "Водоотведение | Водоснабжение")
}
