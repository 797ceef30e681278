package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"zvaintel/internal/db"
	"zvaintel/internal/models"
	"zvaintel/internal/pkg/export"
	"zvaintel/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const exportLimit = 100000

type RecordLister interface {
	ListRegistryRecords(ctx context.Context, f db.RecordFilter) ([]models.RegistryRecord, error)
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type RegistryController struct {
	Records RecordLister
	Queue   TaskEnqueuer
}

type extractRequest struct {
	MaxPages *int `json:"max_pages" binding:"omitempty,min=1"`
	PageSize *int `json:"page_size" binding:"omitempty,min=1"`
	DelayMs  *int `json:"delay_ms" binding:"omitempty,min=0"`
}

// Extract queues a registry extraction run.
func (rc *RegistryController) Extract(c *gin.Context) {
	if rc.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is not configured"})
		return
	}

	var req extractRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	task, err := tasks.NewExtractRegistryTask(req.MaxPages, req.PageSize, req.DelayMs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	info, err := rc.Queue.EnqueueContext(c.Request.Context(), task, asynq.Timeout(30*time.Minute))
	if err != nil {
		log.Error().Err(err).Msg("failed to enqueue extraction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID, "queue": info.Queue})
}

func (rc *RegistryController) ListRecords(c *gin.Context) {
	records, err := rc.Records.ListRegistryRecords(c.Request.Context(), db.RecordFilter{
		Substance:  c.Query("substance"),
		Wholesaler: c.Query("wholesaler"),
		Limit:      getLimitWithDefault(c, db.DefaultListLimit),
		Offset:     getIntWithDefault(c, "offset", 0),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list registry records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
	})
}

func (rc *RegistryController) ExportCSV(c *gin.Context) {
	rc.export(c, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (rc *RegistryController) ExportXLSX(c *gin.Context) {
	rc.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

func (rc *RegistryController) export(c *gin.Context, ext, contentType string, write func(io.Writer, []models.RegistryRecord) error) {
	records, err := rc.Records.ListRegistryRecords(c.Request.Context(), db.RecordFilter{
		Substance:  c.Query("substance"),
		Wholesaler: c.Query("wholesaler"),
		Limit:      exportLimit,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to load registry records for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	filename := fmt.Sprintf("registry_%s.%s", time.Now().Format("20060102"), ext)
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)

	if err := write(c.Writer, records); err != nil {
		log.Error().Err(err).Str("format", ext).Msg("failed to write export")
	}
}

func getLimitWithDefault(c *gin.Context, defaultValue int) int {
	return getIntWithDefault(c, "limit", defaultValue)
}

func getIntWithDefault(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Debug().Str("param", key).Str("value", raw).Msg("invalid integer query param, using default")
		return defaultValue
	}
	return n
}
