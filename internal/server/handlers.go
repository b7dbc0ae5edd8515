package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/kinship/internal/core"
	"github.com/agenthands/kinship/internal/core/render"
	"github.com/agenthands/kinship/internal/core/resolve"
	"github.com/agenthands/kinship/internal/wikidata"
)

type indexView struct {
	ID      string
	Message string
}

func notFoundMessage(input string) string {
	return fmt.Sprintf("Sorry, we couldn't find an entry for %s", input)
}

func (s *Server) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", indexView{ID: DefaultSeed})
}

func (s *Server) FamilyTree(c *gin.Context) {
	input := c.Param("id")
	id, err := s.Resolver.Resolve(c.Request.Context(), input)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", indexView{Message: notFoundMessage(input)})
		return
	}
	c.HTML(http.StatusOK, "index.html", indexView{ID: id})
}

func (s *Server) Search(c *gin.Context) {
	input := c.PostForm("id")
	id, err := s.Resolver.Resolve(c.Request.Context(), input)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", indexView{Message: notFoundMessage(input)})
		return
	}
	c.Redirect(http.StatusFound, "/family-tree/"+url.PathEscape(id))
}

// GraphJSON crawls from :id and returns the rendered graph. The optional
// max_nodes query overrides the configured cap up to the ceiling.
func (s *Server) GraphJSON(c *gin.Context) {
	id, ok := resolve.Normalize(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a numeric or Q-prefixed item id"})
		return
	}

	maxNodes, err := s.maxNodes(c.Query("max_nodes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.Crawler.Crawl(c.Request.Context(), id, core.WithMaxNodes(maxNodes))
	if err != nil {
		status, msg := crawlErrorStatus(err)
		s.Logger.Warn("crawl failed", "id", id, "status", status, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Header("X-Crawl-State", res.State.String())
	if res.State == core.StateExpired {
		// partial graph; a later request may get further
		c.Set(partialResultKey, true)
		c.Header("Cache-Control", "no-store")
	} else {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.Server.CacheMaxAge.Seconds())))
	}
	c.JSON(http.StatusOK, res.Graph(render.NewSerializer(s.Detector)))
}

func (s *Server) maxNodes(raw string) (int, error) {
	if raw == "" {
		return s.cfg.Crawl.MaxNodes, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("max_nodes must be a positive integer")
	}
	return min(n, s.cfg.Crawl.MaxNodesCeiling), nil
}

func crawlErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, wikidata.ErrEntityNotFound):
		return http.StatusNotFound, "entity not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "crawl deadline reached before the person could be fetched"
	case errors.Is(err, core.ErrSeedUnavailable):
		return http.StatusBadGateway, "wikidata is unavailable"
	default:
		return http.StatusServiceUnavailable, "crawl aborted"
	}
}

func (s *Server) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, nil)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
