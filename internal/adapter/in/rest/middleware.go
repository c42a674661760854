package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"postsapi/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/munnerz/goautoneg"
)

// Accept rejects requests whose Accept header does not admit mime.
// A missing Accept header admits everything.
func Accept(mime string) gin.HandlerFunc {
	msg := fmt.Sprintf("Request must accept %s data", mime)
	return func(c *gin.Context) {
		header := strings.Join(c.Request.Header.Values("Accept"), ",")
		if strings.TrimSpace(header) != "" && !accepts(header, mime) {
			abortWithMessage(c, http.StatusNotAcceptable, msg)
			return
		}
		c.Next()
	}
}

// accepts reports whether the most specific media range of header matching
// mime has a non-zero quality.
func accepts(header, mime string) bool {
	typ, sub, ok := strings.Cut(mime, "/")
	if !ok {
		return false
	}

	best, q := -1, 0.0
	for _, r := range goautoneg.ParseAccept(header) {
		var rank int
		switch {
		case strings.EqualFold(r.Type, typ) && strings.EqualFold(r.SubType, sub):
			rank = 2
		case strings.EqualFold(r.Type, typ) && r.SubType == "*":
			rank = 1
		case r.Type == "*" && r.SubType == "*":
			rank = 0
		default:
			continue
		}
		if rank > best || (rank == best && r.Q > q) {
			best, q = rank, r.Q
		}
	}
	return best >= 0 && q > 0
}

// Require rejects requests whose Content-Type media type is not mime.
func Require(mime string) gin.HandlerFunc {
	msg := fmt.Sprintf("Request must contain %s data", mime)
	return func(c *gin.Context) {
		if strings.ToLower(c.ContentType()) != mime {
			abortWithMessage(c, http.StatusUnsupportedMediaType, msg)
			return
		}
		c.Next()
	}
}

// BodySizeLimiter caps the request body; reads past limit fail.
func BodySizeLimiter(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// RequestLogger stores a request-scoped logger in the request context and
// logs the outcome once the handler chain is done.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		log := base.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{"status", status, "latency", time.Since(start)}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request handled", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request handled", attrs...)
		default:
			log.Info("request handled", attrs...)
		}
	}
}
