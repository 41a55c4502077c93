package handlers

import (
	"errors"
	"net/http"

	"swasthsetu/symptom"

	"github.com/gin-gonic/gin"
)

// SymptomCheckRequest is the symptom analysis payload.
type SymptomCheckRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
}

// CheckSymptoms runs the AI symptom analysis and returns a markdown report.
func CheckSymptoms(c *gin.Context) {
	if SymptomChecker == nil {
		fail(c, http.StatusServiceUnavailable, CodeInternal, "Symptom checker is not configured", "set GROQ_API_KEY to enable this feature")
		return
	}

	var req SymptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	analysis, err := SymptomChecker.Analyze(c.Request.Context(), req.Symptoms)
	if err != nil {
		if errors.Is(err, symptom.ErrEmptySymptoms) {
			fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
			return
		}
		fail(c, http.StatusBadGateway, CodeInternal, "Symptom analysis failed", err.Error())
		return
	}
	ok(c, gin.H{"analysis": analysis})
}
