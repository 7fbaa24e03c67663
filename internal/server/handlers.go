package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/civicpulse/internal/clients"
	"github.com/spacesedan/civicpulse/internal/db"
	"github.com/spacesedan/civicpulse/internal/models"
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "CivicPulse API is running",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "CivicPulse API",
	})
}

// handleSubmitFeedback accepts a citizen feedback submission, rejects
// malformed input before any analysis happens, and runs the submission
// sequence. A processing failure maps to a plain 500 so callers can tell it
// apart from their own input errors.
func (s *Server) handleSubmitFeedback(c echo.Context) error {
	var submission models.Submission
	if err := c.Bind(&submission); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": "Validation error",
			"errors": []string{"request body must be a JSON object"},
		})
	}

	if problems := validateSubmission(submission); len(problems) > 0 {
		slog.Error("[Server] Validation failed for submission",
			slog.Any("errors", problems))
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": "Validation error",
			"errors": problems,
		})
	}

	ctx := c.Request().Context()
	fingerprint := clients.SubmissionFingerprint(submission.Email, submission.Subject, submission.Comment)

	if s.guard != nil && s.guard.WasRecentlySubmitted(ctx, fingerprint) {
		return c.JSON(http.StatusConflict, map[string]string{
			"detail": "Duplicate submission detected",
		})
	}

	receipt, err := s.submitter.Submit(ctx, submission)
	if err != nil {
		slog.Error("[Server] Error processing submission",
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"detail": fmt.Sprintf("Error processing submission: %s", err.Error()),
		})
	}

	if s.guard != nil {
		if err := s.guard.MarkSubmissionSeen(ctx, fingerprint); err != nil {
			slog.Warn("[Server] Failed to mark submission as seen",
				slog.String("error", err.Error()))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"submission_id": receipt.SubmissionID,
		"analysis_id":   receipt.AnalysisID,
		"message":       "Feedback submitted successfully",
	})
}

func (s *Server) handleGetSubmission(c echo.Context) error {
	stored, err := s.records.GetSubmission(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"detail": "No submission found with the given id",
			})
		}
		slog.Error("[Server] Error retrieving submission",
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"detail": "Error retrieving submission",
		})
	}

	return c.JSON(http.StatusOK, stored)
}

func (s *Server) handleGetAnalysis(c echo.Context) error {
	stored, err := s.records.GetAnalysis(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"detail": "No sentiment analysis found with the given id",
			})
		}
		slog.Error("[Server] Error retrieving sentiment analysis",
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"detail": "Error retrieving sentiment analysis",
		})
	}

	return c.JSON(http.StatusOK, stored)
}

// handleSchemaExample documents the expected request shape for intake-form
// developers.
func (s *Server) handleSchemaExample(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"example_request": models.Submission{
			Name:     "John Doe",
			Email:    "john.doe@example.com",
			District: "Downtown",
			State:    "California",
			Subject:  "Public Transportation",
			Comment:  "The bus service needs improvement in our area.",
		},
		"required_fields": []string{"name", "email", "district", "state", "subject", "comment"},
		"field_types": map[string]string{
			"name":     "string",
			"email":    "string (valid email format)",
			"district": "string",
			"state":    "string",
			"subject":  "string",
			"comment":  "string",
		},
	})
}
