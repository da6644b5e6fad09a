package web

import (
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// NewServer creates and configures the RWeb server
func NewServer() *rweb.Server {
	s := rweb.NewServer(rweb.ServerOptions{
		Address: ":8000",
		Verbose: true,
	})

	// Apply middleware
	s.Use(rweb.RequestInfo)          // Logs request info
	s.Use(CorsMiddleware)            // CORS headers
	s.Use(SecurityHeadersMiddleware) // Security headers
	s.Use(LoggingMiddleware)         // Request logging

	// Setup routes
	setupRoutes(s)

	// Serve static files using embedded FS
	SetupStaticFiles(s)

	return s
}

// NewTestServer creates a server with caller-supplied options (dynamic
// port, ready channel) for integration tests. Routes and middleware are
// identical to the production server.
func NewTestServer(opts rweb.ServerOptions) *rweb.Server {
	s := rweb.NewServer(opts)

	s.Use(CorsMiddleware)
	s.Use(SecurityHeadersMiddleware)

	setupRoutes(s)
	SetupStaticFiles(s)

	return s
}

// Run starts the server
func Run(s *rweb.Server) error {
	logger.Info("QuoteWall server starting")
	return s.Run()
}
