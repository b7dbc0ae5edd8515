package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/agenthands/kinship/internal/cache"
	"github.com/agenthands/kinship/internal/config"
	"github.com/agenthands/kinship/internal/core"
	"github.com/agenthands/kinship/internal/core/community"
	"github.com/agenthands/kinship/internal/core/parser"
	"github.com/agenthands/kinship/internal/core/resolve"
	"github.com/agenthands/kinship/internal/metrics"
	"github.com/agenthands/kinship/internal/wikidata"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DefaultSeed is the person shown on the front page.
const DefaultSeed = "1339"

const shutdownTimeout = 30 * time.Second

// Deps are the collaborators a Server is built from. Cache and Metrics may
// be nil.
type Deps struct {
	Fetcher  wikidata.EntityFetcher
	Searcher wikidata.Searcher
	Cache    *cache.Store
	Metrics  *metrics.Registry
	Logger   *slog.Logger
}

type Server struct {
	Crawler  *core.Crawler
	Resolver *resolve.Resolver
	Detector community.Detector
	Cache    *cache.Store
	Metrics  *metrics.Registry
	Logger   *slog.Logger

	cfg       *config.Config
	templates *template.Template
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	crawler := core.NewCrawler(deps.Fetcher, parser.NewParser(cfg.Wikidata.Language, cfg.Server.MobileLinks))
	crawler.Logger = logger
	crawler.Metrics = deps.Metrics
	crawler.MaxNodes = cfg.Crawl.MaxNodes
	crawler.Deadline = cfg.Crawl.CrawlDeadline.Duration

	return &Server{
		Crawler:   crawler,
		Resolver:  resolve.NewResolver(deps.Searcher, logger),
		Detector:  community.New(cfg.Server.Layout),
		Cache:     deps.Cache,
		Metrics:   deps.Metrics,
		Logger:    logger,
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.templates)

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.cfg.Telemetry.ServiceName))
	r.Use(s.requestLogger())
	r.Use(s.metricsMiddleware())

	static, _ := fs.Sub(staticFS, "static")
	assets := r.Group("/static", cacheControl(365*24*time.Hour))
	assets.StaticFS("/", http.FS(static))

	r.GET("/", s.Index)
	r.GET("/family-tree/:id", s.FamilyTree)
	r.POST("/search", s.Search)
	r.GET("/json/:id", s.cacheMiddleware(), s.GraphJSON)
	r.GET("/about", s.page("about.html"))
	r.GET("/credits", s.page("credits.html"))
	r.GET("/healthz", s.Health)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	return r
}

// Handler is the router wrapped in response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.SetupRouter())
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Crawl.CrawlDeadline.Duration + 15*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
