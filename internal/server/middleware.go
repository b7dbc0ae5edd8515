package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		s.Metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func cacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// bodyWriter keeps a copy of everything the handler writes.
type bodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// partialResultKey marks a response the cache must not keep.
const partialResultKey = "kinship.partial"

func graphCacheKey(c *gin.Context) string {
	return "json:" + c.Param("id") + "?max_nodes=" + c.Query("max_nodes")
}

// cacheMiddleware answers graph requests from the response cache and stores
// successful, complete responses. refresh=1 skips the lookup but still
// stores the fresh result.
func (s *Server) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Cache == nil {
			c.Next()
			return
		}

		key := graphCacheKey(c)
		if c.Query("refresh") == "" {
			body, ok, err := s.Cache.Get(key)
			if err != nil {
				s.Logger.Warn("cache lookup failed", "key", key, "error", err)
			}
			s.Metrics.RecordCacheLookup(ok)
			if ok {
				c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.Server.CacheMaxAge.Seconds())))
				c.Header("X-Cache", "HIT")
				c.Data(http.StatusOK, "application/json; charset=utf-8", body)
				c.Abort()
				return
			}
		}

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header("X-Cache", "MISS")
		c.Next()

		if w.Status() != http.StatusOK || c.GetBool(partialResultKey) {
			return
		}
		if err := s.Cache.Set(key, w.body.Bytes()); err != nil {
			s.Logger.Warn("cache store failed", "key", key, "error", err)
		}
	}
}
