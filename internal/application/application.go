package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/config"
	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/handler"
	"github.com/psds-microservice/dispatch/internal/router"
	"github.com/psds-microservice/dispatch/internal/service"
	"github.com/psds-microservice/dispatch/internal/watch"
)

// API — локальный HTTP-сервер журнала поверх каталога помесячных баз.
type API struct {
	cfg     *config.Config
	log     *zap.Logger
	session *database.Session
	poller  *watch.Poller
	httpSrv *http.Server
}

// NewAPI открывает хранилище текущего месяца и собирает обработчики.
func NewAPI(ctx context.Context, cfg *config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	session, err := database.OpenSession(ctx, cfg.BaseDir, time.Now(), log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	svcLog := log.Named("service")
	users := service.NewUserService(session.Shared(), svcLog)
	if _, err := users.EnsureDefaultAdmin(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("default admin: %w", err)
	}
	requests := service.NewRequestService(session, svcLog)
	reports := service.NewReportService(requests)

	changes := &handler.Changes{}
	poller := watch.NewPoller(cfg.BaseDir, cfg.PollInterval, session.Signature, func(sig database.Signature) {
		changes.Bump(sig)
		log.Info("active store changed", zap.Int64("max_id", sig.MaxID), zap.Int64("count", sig.Count))
	}, log.Named("watch"))

	h := router.New(router.Deps{
		Requests: handler.NewRequestHandler(requests, cfg.BaseDir, changes),
		Periods:  handler.NewPeriodHandler(session),
		Users:    handler.NewUserHandler(users),
		Reports:  handler.NewReportHandler(reports, cfg.BaseDir),
		Callers:  users,
		Ready: func(ctx context.Context) error {
			_, err := session.Signature(ctx)
			return err
		},
		Log: log.Named("http"),
	})

	return &API{
		cfg:     cfg,
		log:     log,
		session: session,
		poller:  poller,
		httpSrv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run запускает HTTP-сервер и наблюдатель, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	defer func() {
		if err := a.session.Close(); err != nil {
			a.log.Warn("close session", zap.Error(err))
		}
	}()

	if err := a.poller.Start(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer a.poller.Stop()

	base := "http://" + a.httpSrv.Addr
	a.log.Info("HTTP server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("db_dir", a.cfg.BaseDir),
		zap.String("active", a.session.ActivePath()))
	a.log.Info("endpoints",
		zap.String("health", base+router.PathHealth),
		zap.String("ready", base+router.PathReady),
		zap.String("metrics", base+router.PathMetrics),
		zap.String("api", base+"/api/v1/"))

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
