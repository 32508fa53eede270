package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/config"
	"github.com/psds-microservice/dispatch/internal/logger"
)

var (
	cfg *config.Config
	log *zap.Logger

	flagDBDir    string
	flagLogin    string
	flagPassword string
)

var rootCmd = &cobra.Command{
	Use:               "dispatch",
	Short:             "Журнал заявок диспетчерской службы водоканала: помесячные базы SQLite, отчёты xlsx",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDBDir, "db-dir", "", "каталог с app.db и app_YYYY_MM.db (по умолчанию из dispatch.yaml)")
	pf.StringVar(&flagLogin, "login", "", "логин оператора (или DISPATCH_LOGIN)")
	pf.StringVar(&flagPassword, "password", "", "пароль оператора (или DISPATCH_PASSWORD)")

	rootCmd.AddCommand(serveCmd, migrateCmd, periodsCmd, setDirCmd, catalogCmd, userCmd, requestCmd, exportCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if flagDBDir != "" {
		abs, err := filepath.Abs(flagDBDir)
		if err != nil {
			return fmt.Errorf("db dir: %w", err)
		}
		c.BaseDir = abs
	}
	if flagLogin != "" {
		c.Login = flagLogin
	}
	if flagPassword != "" {
		c.Password = flagPassword
	}
	if err := c.Validate(); err != nil {
		return err
	}
	l, err := logger.New(c.AppEnv, c.LogLevel)
	if err != nil {
		return err
	}
	cfg, log = c, l
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	return nil
}
