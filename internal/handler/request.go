package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/model"
	"github.com/psds-microservice/dispatch/internal/service"
)

// RequestHandler — заявки. Операции по id принимают ?period=app_YYYY_MM.db (или ГГГГ-ММ):
// id уникален только внутри файла периода; без параметра — активный период.
type RequestHandler struct {
	svc     service.RequestServicer
	baseDir string
	changes *Changes
}

func NewRequestHandler(svc service.RequestServicer, baseDir string, changes *Changes) *RequestHandler {
	return &RequestHandler{svc: svc, baseDir: baseDir, changes: changes}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// periodsFrom читает ?period=...; без параметра — все периоды каталога.
func periodsFrom(c *gin.Context, baseDir string) ([]string, bool) {
	periods, err := database.ResolvePeriods(baseDir, c.QueryArray("period"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return periods, true
}

func (h *RequestHandler) Create(c *gin.Context) {
	var in service.RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	id, err := h.svc.Create(c.Request.Context(), callerFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	row, err := h.svc.Get(c.Request.Context(), "", id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), c.Query("period"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *RequestHandler) List(c *gin.Context) {
	var f service.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	periods, ok := periodsFrom(c, h.baseDir)
	if !ok {
		return
	}
	rows, err := h.svc.List(c.Request.Context(), f, periods)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []model.RequestRow{}
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": rows,
		"total":    len(rows),
	})
}

func (h *RequestHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in service.RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	period := c.Query("period")
	if err := h.svc.Update(c.Request.Context(), period, id, in); err != nil {
		respondError(c, err)
		return
	}
	row, err := h.svc.Get(c.Request.Context(), period, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *RequestHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	period := c.Query("period")
	if err := h.svc.SetStatus(c.Request.Context(), period, id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	row, err := h.svc.Get(c.Request.Context(), period, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), callerFrom(c), c.Query("period"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RequestHandler) Recent(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	rows, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []model.RequestRow{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": rows})
}

// Signature — отпечаток активной базы и счётчик замеченных изменений.
func (h *RequestHandler) Signature(c *gin.Context) {
	sig, err := h.svc.Signature(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"max_id":  sig.MaxID,
		"count":   sig.Count,
		"version": h.changes.Version(),
	})
}

// Catalog — типовые формулировки проблем для категории (?category=...).
func Catalog(c *gin.Context) {
	category, err := model.ParseCategory(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"categories": []string{model.CategorySewerage, model.CategoryWaterSupply},
		"statuses":   []model.Status{model.StatusInProgress, model.StatusNotDone, model.StatusDone},
		"problems":   model.ProblemCatalog(category),
	})
}
