package server

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	s.echo.POST("/api/submit-feedback", s.handleSubmitFeedback)
	s.echo.GET("/api/submissions/:id", s.handleGetSubmission)
	s.echo.GET("/api/analysis/:id", s.handleGetAnalysis)
	s.echo.GET("/api/schema-example", s.handleSchemaExample)
}
