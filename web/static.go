package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// Embed static directory files
//
//go:embed all:static
var staticFiles embed.FS

// SetupStaticFiles configures static file serving using embedded files
func SetupStaticFiles(s *rweb.Server) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logger.LogErr(err, "failed to get static subdirectory")
		return
	}

	// Serve /favicon.ico as an inline SVG so no separate icon file is needed
	const faviconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 500 500"><rect width="500" height="500" rx="40" fill="#4a6b8a"/><text x="250" y="330" font-family="Georgia,serif" font-weight="900" font-size="300" fill="white" text-anchor="middle">&#8220;</text></svg>`

	s.Get("/favicon.ico", func(c rweb.Context) error {
		c.Response().SetHeader("Content-Type", "image/svg+xml")
		c.Response().SetHeader("Cache-Control", "public, max-age=86400")
		return c.Bytes([]byte(faviconSVG))
	})

	// Serve static files at /static/ path
	s.Get("/static/*", func(c rweb.Context) error {
		// Strip /static/ prefix and serve from embedded FS
		path := c.Request().Path()[8:]

		file, err := staticFS.Open(path)
		if err != nil {
			c.SetStatus(http.StatusNotFound)
			return nil
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.SetStatus(http.StatusInternalServerError)
			return nil
		}

		c.Response().SetHeader("Content-Type", contentTypeFor(path))
		c.Response().SetHeader("Cache-Control", "public, max-age=3600")
		return c.Bytes(data)
	})
}

// contentTypeFor maps the few asset extensions we embed.
func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
