package configmanagement

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetConfigHandler returns the live runtime configuration.
func GetConfigHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Get())
	}
}

// UpdateConfigHandler replaces the runtime configuration and persists it.
func UpdateConfigHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RuntimeConfig
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
			return
		}
		if req.STTProvider == "" {
			req.STTProvider = DefaultSTTProvider
		}
		if err := store.Update(req); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Config updated",
			"phrase_hints": req.PhraseHints,
			"stt_provider": req.STTProvider,
		})
	}
}
