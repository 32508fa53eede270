package handler

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/model"
)

type PeriodHandler struct {
	session *database.Session
}

func NewPeriodHandler(s *database.Session) *PeriodHandler {
	return &PeriodHandler{session: s}
}

type periodView struct {
	File   string `json:"file"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

func (h *PeriodHandler) List(c *gin.Context) {
	active := filepath.Base(h.session.ActivePath())
	out := []periodView{}
	for _, p := range database.ListPeriods(h.session.BaseDir()) {
		name := filepath.Base(p)
		out = append(out, periodView{File: name, Label: database.PeriodLabel(name), Active: name == active})
	}
	c.JSON(http.StatusOK, gin.H{"periods": out, "active": active})
}

type setActiveRequest struct {
	File string `json:"file"`
	Date string `json:"date"`
}

// SetActive переключает активный период по имени файла или по дате внутри месяца.
func (h *PeriodHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var err error
	switch {
	case req.File != "":
		paths, rerr := database.ResolvePeriods(h.session.BaseDir(), []string{req.File})
		if rerr != nil {
			respondError(c, rerr)
			return
		}
		if len(paths) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one period file is expected"})
			return
		}
		err = h.session.Switch(c.Request.Context(), paths[0])
	case req.Date != "":
		d, derr := model.ParseDate(req.Date)
		if derr != nil {
			respondError(c, derr)
			return
		}
		t, _ := time.ParseInLocation(model.DateLayout, d, time.Local)
		err = h.session.SwitchToDate(c.Request.Context(), t)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "file or date is required"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	name := filepath.Base(h.session.ActivePath())
	c.JSON(http.StatusOK, periodView{File: name, Label: database.PeriodLabel(name), Active: true})
}
