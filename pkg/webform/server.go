// Package webform serves the language detection form.
package webform

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/cognitive-demos/pkg/client"
	"github.com/menta2k/cognitive-demos/pkg/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders the form and forwards submissions to a LanguageDetector
type Server struct {
	detector client.LanguageDetector
	logger   *slog.Logger
	engine   *gin.Engine
}

// NewServer builds the gin engine. A nil logger means slog.Default.
func NewServer(detector client.LanguageDetector, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.SetHTMLTemplate(tmpl)

	s := &Server{detector: detector, logger: logger, engine: engine}
	engine.GET("/", s.index)
	engine.POST("/detect", s.detect)
	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	return s, nil
}

// Handler exposes the engine for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (s *Server) detect(c *gin.Context) {
	text := c.PostForm("user_text")
	c.HTML(http.StatusOK, "result.html", gin.H{"language": s.Language(c.Request.Context(), text)})
}

// Language returns the string the result page shows for text
func (s *Server) Language(ctx context.Context, text string) string {
	msg, err := language.Describe(ctx, s.detector, text)
	if err != nil {
		s.logger.Warn("language detection failed", "error", err)
	}
	return msg
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
