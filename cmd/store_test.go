package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/config"
	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/service"
)

func useConfig(t *testing.T, login, password string) string {
	t.Helper()
	prevCfg, prevLog, prevOut := cfg, log, exportOut
	t.Cleanup(func() { cfg, log, exportOut = prevCfg, prevLog, prevOut })

	dir := t.TempDir()
	cfg = &config.Config{BaseDir: dir, Login: login, Password: password}
	log = zap.NewNop()
	return dir
}

func run(c *cobra.Command, args ...string) error {
	c.SetContext(context.Background())
	return c.RunE(c, args)
}

func TestReadCommands_RequireLogin(t *testing.T) {
	useConfig(t, "", "")

	cases := []struct {
		cmd  *cobra.Command
		args []string
	}{
		{requestGetCmd, []string{"1"}},
		{requestRecentCmd, nil},
		{requestListCmd, nil},
		{exportListCmd, nil},
		{exportPeriodCmd, nil},
		{exportFilteredCmd, nil},
		{exportSummaryCmd, nil},
		{exportBlankCmd, nil},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, run(tc.cmd, tc.args...), errs.ErrMissingCredentials, tc.cmd.CommandPath())
	}
}

func TestReadCommands_WrongPassword(t *testing.T) {
	useConfig(t, service.DefaultAdminLogin, "wrong")

	assert.ErrorIs(t, run(requestRecentCmd), errs.ErrInvalidCredentials)
	assert.ErrorIs(t, run(exportListCmd), errs.ErrInvalidCredentials)
}

func TestReadCommands_WithLogin(t *testing.T) {
	dir := useConfig(t, service.DefaultAdminLogin, service.DefaultAdminPassword)

	require.NoError(t, run(requestRecentCmd))
	require.NoError(t, run(requestListCmd))

	exportOut = filepath.Join(dir, "list.xlsx")
	require.NoError(t, run(exportListCmd))
	assert.FileExists(t, exportOut)
}
