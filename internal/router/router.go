package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/handler"
)

const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
)

type Deps struct {
	Requests *handler.RequestHandler
	Periods  *handler.PeriodHandler
	Users    *handler.UserHandler
	Reports  *handler.ReportHandler
	Callers  handler.UserLookup
	Ready    func(ctx context.Context) error
	Log      *zap.Logger
}

func New(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), metrics(), requestLogger(log))
	r.GET(PathHealth, handler.Health)
	r.GET(PathReady, handler.Ready(d.Ready))
	r.GET(PathMetrics, gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/login", d.Users.Login)
	v1.GET("/catalog", handler.Catalog)

	auth := v1.Group("", handler.RequireCaller(d.Callers))
	{
		auth.POST("/requests", d.Requests.Create)
		auth.GET("/requests", d.Requests.List)
		auth.GET("/requests/recent", d.Requests.Recent)
		auth.GET("/requests/:id", d.Requests.Get)
		auth.PUT("/requests/:id", d.Requests.Update)
		auth.PATCH("/requests/:id/status", d.Requests.SetStatus)
		auth.DELETE("/requests/:id", d.Requests.Delete)

		auth.GET("/signature", d.Requests.Signature)
		auth.GET("/periods", d.Periods.List)
		auth.POST("/periods/active", d.Periods.SetActive)

		auth.GET("/operators", d.Users.Operators)
		auth.GET("/reports/:kind", d.Reports.Export)
	}
	auth.POST("/users", handler.RequireAdmin(), d.Users.Create)

	return r
}
