package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"postsapi/internal/adapter/in/rest/schema"
	"postsapi/internal/model"
	"postsapi/internal/service"

	"github.com/gin-gonic/gin"
)

type PostService interface {
	ListPosts(ctx context.Context, req service.ListPostsRequest) ([]model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (model.Post, error)
	CreatePost(ctx context.Context, req service.CreatePostRequest) (model.Post, error)
	UpdatePost(ctx context.Context, req service.UpdatePostRequest) (model.Post, error)
	DeletePost(ctx context.Context, postID int64) error
}

// PostSchema is the shape accepted by create and edit.
var PostSchema = schema.Object{
	Fields: []schema.Field{
		{Name: "title", Type: "string"},
		{Name: "body", Type: "string"},
	},
	Required: []string{"title", "body"},
}

type postPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Handler struct {
	posts     PostService
	validator *schema.Validator
	basePath  string
}

func NewHandler(posts PostService, basePath string) *Handler {
	return &Handler{
		posts:     posts,
		validator: schema.MustNew(PostSchema),
		basePath:  strings.TrimRight(basePath, "/"),
	}
}

func (h *Handler) postLocation(id int64) string {
	return fmt.Sprintf("%s/posts/%d", h.basePath, id)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.posts.ListPosts(c.Request.Context(), service.ListPostsRequest{
		TitleLike: c.Query("title_like"),
		BodyLike:  c.Query("body_like"),
	})
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, label, ok := parsePostID(c.Param("id"))
	if !ok {
		abortNotFound(c, label)
		return
	}

	post, err := h.posts.GetPostByID(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, label, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, label, ok := parsePostID(c.Param("id"))
	if !ok {
		abortNotFound(c, label)
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), id); err != nil {
		abortWithServiceError(c, label, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *Handler) CreatePost(c *gin.Context) {
	payload, ok := h.bindPost(c)
	if !ok {
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), service.CreatePostRequest{
		Title: payload.Title,
		Body:  payload.Body,
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	c.Header("Location", h.postLocation(post.ID))
	c.JSON(http.StatusCreated, post)
}

// EditPost answers 201 like create does; existing clients expect it.
func (h *Handler) EditPost(c *gin.Context) {
	id, label, ok := parsePostID(c.Param("id"))
	if !ok {
		abortNotFound(c, label)
		return
	}

	payload, ok := h.bindPost(c)
	if !ok {
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), service.UpdatePostRequest{
		ID:    id,
		Title: payload.Title,
		Body:  payload.Body,
	})
	if err != nil {
		abortWithServiceError(c, label, err)
		return
	}

	c.Header("Location", h.postLocation(post.ID))
	c.JSON(http.StatusCreated, post)
}

// bindPost reads the body, checks it against PostSchema and decodes it.
// On failure the response is already written.
func (h *Handler) bindPost(c *gin.Context) (postPayload, bool) {
	var payload postPayload

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithMessage(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return payload, false
		}
		abortWithMessage(c, http.StatusBadRequest, msgMalformedBody)
		return payload, false
	}

	if err := h.validator.Validate(data); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			abortWithMessage(c, http.StatusUnprocessableEntity, verr.Message)
			return payload, false
		}
		abortWithMessage(c, http.StatusBadRequest, msgMalformedBody)
		return payload, false
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		abortWithMessage(c, http.StatusBadRequest, msgMalformedBody)
		return payload, false
	}
	return payload, true
}

// parsePostID accepts unsigned decimal ids only, so "+1" and "-1" never
// resolve. label is the id as echoed in not-found messages: the parsed
// value when the segment is all digits, the raw segment otherwise.
func parsePostID(raw string) (id int64, label string, ok bool) {
	if raw == "" || strings.IndexFunc(raw, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, raw, false
	}

	label = strings.TrimLeft(raw, "0")
	if label == "" {
		label = "0"
	}
	id, err := strconv.ParseInt(label, 10, 64)
	if err != nil || id <= 0 {
		return 0, label, false
	}
	return id, label, true
}
