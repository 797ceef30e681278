package controllers

import (
	"context"
	"net/http"
	"time"

	"zvaintel/internal/models"
	"zvaintel/internal/pkg/aggregator"
	"zvaintel/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type VendorResearcher interface {
	Research(ctx context.Context, name, country, knownWebsite string) (*models.VendorIntelligence, []string)
}

type VendorSearcher interface {
	Search(ctx context.Context, req aggregator.Request) aggregator.Result
}

type VendorController struct {
	Researcher VendorResearcher
	Searcher   VendorSearcher
	Queue      TaskEnqueuer
}

type researchRequest struct {
	VendorName string `json:"vendor_name" binding:"required"`
	Country    string `json:"country"`
	Website    string `json:"website" binding:"omitempty,url"`
	Async      bool   `json:"async"`
}

// Research runs vendor research inline, or queues it when async is set.
func (vc *VendorController) Research(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Async {
		if vc.Queue == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is not configured"})
			return
		}
		task, err := tasks.NewResearchVendorTask(req.VendorName, req.Country, req.Website)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		info, err := vc.Queue.EnqueueContext(c.Request.Context(), task, asynq.MaxRetry(3), asynq.Retention(24*time.Hour))
		if err != nil {
			log.Error().Err(err).Str("vendor", req.VendorName).Msg("failed to enqueue research")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
		return
	}

	if vc.Researcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Vendor research is not configured"})
		return
	}

	v, errs := vc.Researcher.Research(c.Request.Context(), req.VendorName, req.Country, req.Website)
	if v == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Research failed", "errors": errs})
		return
	}
	if errs == nil {
		errs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"intelligence": v,
		"errors":       errs,
	})
}

// Search aggregates supplier candidates for a medicine.
func (vc *VendorController) Search(c *gin.Context) {
	if vc.Searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Vendor search is not configured"})
		return
	}

	var req aggregator.Request
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, vc.Searcher.Search(c.Request.Context(), req))
}
