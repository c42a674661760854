package service

import (
	"context"
	"fmt"
	"postsapi/internal/adapter/out/storage"
	"postsapi/internal/model"

	"github.com/go-playground/validator/v10"
)

//go:generate mockgen -source=posts.go -destination=./post_storage_mock.go -package=service postsapi/internal/service PostStorage
type PostStorage interface {
	ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (model.Post, error)
	CreatePost(ctx context.Context, post model.Post) (model.Post, error)
	UpdatePost(ctx context.Context, post model.Post) (model.Post, error)
	DeletePost(ctx context.Context, postID int64) error
}

// TxManager runs fn in a single unit of work. Storages read the
// transaction back from the context passed to fn.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type PostService struct {
	postStorage PostStorage
	trManager   TxManager
	validate    *validator.Validate
}

func NewPostService(postStorage PostStorage, trManager TxManager) *PostService {
	if trManager == nil {
		trManager = NoopTxManager{}
	}
	return &PostService{
		postStorage: postStorage,
		trManager:   trManager,
		validate:    validator.New(),
	}
}

func (s *PostService) ListPosts(ctx context.Context, req ListPostsRequest) ([]model.Post, error) {
	posts, err := s.postStorage.ListPosts(ctx, toListPostsParams(req))
	if err != nil {
		return nil, storageErr(err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("postID must be > 0: %w", ErrInvalidRequest)
	}
	post, err := s.postStorage.GetPostByID(ctx, postID)
	if err != nil {
		return model.Post{}, storageErr(err)
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (model.Post, error) {
	post, err := s.postStorage.CreatePost(ctx, model.Post{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		return model.Post{}, storageErr(err)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, req UpdatePostRequest) (model.Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var out model.Post
	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		post, err := s.postStorage.GetPostByID(ctx, req.ID)
		if err != nil {
			return err
		}

		post.Title = req.Title
		post.Body = req.Body

		out, err = s.postStorage.UpdatePost(ctx, post)
		return err
	})
	if err != nil {
		return model.Post{}, storageErr(err)
	}
	return out, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return fmt.Errorf("postID must be > 0: %w", ErrInvalidRequest)
	}

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.postStorage.GetPostByID(ctx, postID); err != nil {
			return err
		}
		return s.postStorage.DeletePost(ctx, postID)
	})
	return storageErr(err)
}

// NoopTxManager calls fn directly. Used with storages that commit every
// call on their own.
type NoopTxManager struct{}

func (NoopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
