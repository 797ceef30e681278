package controllers

import (
	"context"
	"net/http"
	"strings"

	"zvaintel/internal/models"

	"github.com/gin-gonic/gin"
)

type SupplierMatcher interface {
	Match(ctx context.Context, substance, dosageForm string) ([]models.SupplierMatch, []string)
}

type SupplierController struct {
	Matcher SupplierMatcher
}

func (sc *SupplierController) Match(c *gin.Context) {
	if sc.Matcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Supplier matching is not configured"})
		return
	}

	substance := strings.TrimSpace(c.Query("active_substance"))
	if substance == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active_substance is required"})
		return
	}

	matches, errs := sc.Matcher.Match(c.Request.Context(), substance, c.Query("dosage_form"))
	if errs == nil {
		errs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"errors":  errs,
	})
}
