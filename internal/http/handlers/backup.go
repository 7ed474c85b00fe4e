package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/engine"

	"github.com/gin-gonic/gin"
)

// ExportBackup returns the caller's full collection as a portable
// payload, archived tasks included.
func (h *Handler) ExportBackup(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	payload, err := h.Tasks.Export(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="taskboard-backup.json"`)
	c.JSON(http.StatusOK, payload)
}

// ImportBackup merges an uploaded payload into the caller's collection.
func (h *Handler) ImportBackup(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var payload engine.BackupPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed backup payload"})
		return
	}

	res, err := h.Tasks.Import(c.Request.Context(), userID, &payload)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnsupportedBackupVersion):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, engine.ErrMalformedBackup):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": res.Imported,
		"skipped":  res.Skipped,
	})
}
