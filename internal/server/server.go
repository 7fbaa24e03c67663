package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spacesedan/civicpulse/internal/models"
)

// submitter runs the submission sequence end to end.
type submitter interface {
	Submit(ctx context.Context, submission models.Submission) (models.SubmissionReceipt, error)
}

// recordReader serves the read-by-identifier endpoints.
type recordReader interface {
	GetSubmission(ctx context.Context, submissionID string) (models.StoredSubmission, error)
	GetAnalysis(ctx context.Context, analysisID string) (models.StoredAnalysis, error)
}

// DuplicateGuard tracks recently accepted submission fingerprints (nil when
// duplicate protection is disabled).
type DuplicateGuard interface {
	WasRecentlySubmitted(ctx context.Context, fingerprint string) bool
	MarkSubmissionSeen(ctx context.Context, fingerprint string) error
}

type Server struct {
	echo      *echo.Echo
	port      string
	submitter submitter
	records   recordReader
	guard     DuplicateGuard
}

func New(port string, allowedOrigins []string, submitter submitter, records recordReader, guard DuplicateGuard) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{echo.GET, echo.POST, echo.OPTIONS},
		}))
	}

	srv := &Server{
		echo:      e,
		port:      port,
		submitter: submitter,
		records:   records,
		guard:     guard,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting", slog.String("port", s.port))
	return s.echo.Start(fmt.Sprintf(":%s", s.port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
