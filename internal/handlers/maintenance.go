package handlers

import (
	"log"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"vget/internal/models"
	"vget/internal/retention"
	"vget/internal/store"
	"vget/internal/version"
)

// MaintenanceHandler serves cleanup, stats and health.
type MaintenanceHandler struct {
	store   *store.JobStore
	manager *retention.Manager
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(jobStore *store.JobStore, manager *retention.Manager) *MaintenanceHandler {
	return &MaintenanceHandler{store: jobStore, manager: manager}
}

type cleanupRequest struct {
	// Keep overrides the retention count for this sweep only. A pointer
	// distinguishes an absent field from an explicit 0 (delete all).
	Keep *int `json:"keep"`
}

// Cleanup triggers an on-demand retention sweep.
// POST /maintenance/cleanup
func (h *MaintenanceHandler) Cleanup(c echo.Context) error {
	keep := h.manager.Keep()

	var req cleanupRequest
	if err := c.Bind(&req); err == nil && req.Keep != nil {
		keep = *req.Keep
	}

	report, err := h.manager.Sweep(keep)
	if err != nil {
		log.Printf("Manual cleanup error: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	log.Printf("Manual cleanup: Deleted %d files, kept %d", report.Deleted, report.Remaining)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Cleanup completed",
		"deleted":      report.Deleted,
		"deletedFiles": report.DeletedFiles,
		"remaining":    report.Remaining,
	})
}

// Stats reports storage usage and job counts.
// GET /stats
func (h *MaintenanceHandler) Stats(c echo.Context) error {
	files, totalBytes, err := h.manager.Usage()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	totalSizeMb := math.Round(float64(totalBytes)/(1024*1024)*100) / 100

	return c.JSON(http.StatusOK, map[string]interface{}{
		"totalFiles":         files,
		"totalSizeMb":        totalSizeMb,
		"activeDownloads":    h.store.CountByStatus(models.StatusDownloading),
		"completedDownloads": h.store.CountByStatus(models.StatusCompleted),
		"maxFilesKept":       h.manager.Keep(),
	})
}

// Health returns static liveness info, no dependency checks.
// GET /health
func (h *MaintenanceHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"version":        version.Version,
		"downloadFolder": h.manager.Dir(),
		"maxFiles":       h.manager.Keep(),
	})
}
