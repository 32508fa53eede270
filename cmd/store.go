package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
	"github.com/psds-microservice/dispatch/internal/service"
)

// store — сессия и сервисы для одной CLI-команды.
type store struct {
	session  *database.Session
	users    *service.UserService
	requests *service.RequestService
	reports  *service.ReportService
}

func openStore(ctx context.Context) (*store, error) {
	s, err := database.OpenSession(ctx, cfg.BaseDir, time.Now(), log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	st := &store{
		session: s,
		users:   service.NewUserService(s.Shared(), log),
	}
	if _, err := st.users.EnsureDefaultAdmin(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	st.requests = service.NewRequestService(s, log)
	st.reports = service.NewReportService(st.requests)
	return st, nil
}

func (st *store) Close() error {
	return st.session.Close()
}

// login — оператор из --login/--password или DISPATCH_LOGIN/DISPATCH_PASSWORD.
func (st *store) login(ctx context.Context) (model.User, error) {
	if cfg.Login == "" || cfg.Password == "" {
		return model.User{}, errs.ErrMissingCredentials
	}
	u, err := st.users.Authenticate(ctx, cfg.Login, cfg.Password)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// usePeriod переключает активный период, если задан --period (файл или ГГГГ-ММ).
func (st *store) usePeriod(ctx context.Context, period string) error {
	if period == "" {
		return nil
	}
	paths, err := database.ResolvePeriods(cfg.BaseDir, []string{period})
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("%w: %q", errs.ErrInvalidPeriod, period)
	}
	return st.session.Switch(ctx, paths[0])
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
