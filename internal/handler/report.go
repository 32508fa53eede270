package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/dispatch/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc     *service.ReportService
	baseDir string
}

func NewReportHandler(svc *service.ReportService, baseDir string) *ReportHandler {
	return &ReportHandler{svc: svc, baseDir: baseDir}
}

// Export отдаёт xlsx: /reports/list|period|filtered|summary-day|summary-week|blank.
func (h *ReportHandler) Export(c *gin.Context) {
	var f service.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	periods, ok := periodsFrom(c, h.baseDir)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	day := c.Query("date")

	var (
		exp *service.Export
		err error
	)
	switch c.Param("kind") {
	case "list":
		exp, err = h.svc.List(ctx, f, periods)
	case "period":
		exp, err = h.svc.Period(ctx, f.From, f.To, periods)
	case "filtered":
		exp, err = h.svc.Filtered(ctx, f, periods)
	case "summary-day":
		exp, err = h.svc.Summary(ctx, day, false, periods)
	case "summary-week":
		exp, err = h.svc.Summary(ctx, day, true, periods)
	case "blank":
		exp, err = h.svc.Blank(ctx, day, periods)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	defer exp.File.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(exp.Name))
	c.Status(http.StatusOK)
	if _, err := exp.File.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
