package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type Options struct {
	BasePath     string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func NewRouter(posts PostService, opts Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), RequestLogger(opts.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.NoRoute(func(c *gin.Context) {
		abortWithMessage(c, http.StatusNotFound, msgRouteNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		abortWithMessage(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	h := NewHandler(posts, opts.BasePath)
	h.Register(r.Group(opts.BasePath), opts.MaxBodyBytes)
	return r
}

// Register mounts the posts routes. Accept is checked before Content-Type.
func (h *Handler) Register(g *gin.RouterGroup, maxBodyBytes int64) {
	accept := Accept(binding.MIMEJSON)
	require := Require(binding.MIMEJSON)
	limit := BodySizeLimiter(maxBodyBytes)

	g.GET("/posts", accept, h.ListPosts)
	g.GET("/posts/:id", accept, h.GetPost)
	g.POST("/posts/:id/delete", accept, h.DeletePost)
	g.POST("/posts", accept, require, limit, h.CreatePost)
	g.PUT("/posts/:id", accept, require, limit, h.EditPost)
}
