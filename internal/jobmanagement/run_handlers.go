package jobmanagement

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"voice-ai-eval-platform/internal/datastore"
)

// requireDatastore rejects the request when run persistence is not
// configured. Returns false after writing the response.
func requireDatastore(c *gin.Context) bool {
	if !datastore.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history requires a configured database"})
		return false
	}
	return true
}

// ListRunsHandler lists recorded runs, newest first. ?limit=N caps the
// list; omitted or non-positive means all.
func ListRunsHandler(c *gin.Context) {
	if !requireDatastore(c) {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit format"})
			return
		}
		limit = parsed
	}

	runs, err := datastore.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list runs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetRunHandler retrieves a single run by its ID.
func GetRunHandler(c *gin.Context) {
	if !requireDatastore(c) {
		return
	}

	run, err := datastore.GetRun(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve run: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetRunResultsHandler retrieves the per-item results recorded for a run.
func GetRunResultsHandler(c *gin.Context) {
	if !requireDatastore(c) {
		return
	}

	runID := c.Param("id")
	if _, err := datastore.GetRun(runID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify run existence: " + err.Error()})
		}
		return
	}

	results, err := datastore.GetResultsForRun(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results for run: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
