package inmemory

import (
	"context"
	"postsapi/internal/adapter/out/storage"
	"postsapi/internal/model"
	"postsapi/internal/service"
	"strings"
	"sync"
)

// PostStorage keeps posts in a slice indexed by id. Slot 0 is reserved and
// deleted slots stay zeroed, so ids are never handed out twice.
type PostStorage struct {
	mu    sync.RWMutex
	posts []model.Post
	byID  map[int64]model.Post
}

func NewPostStorage() *PostStorage {
	return &PostStorage{
		posts: []model.Post{{}},
		byID:  make(map[int64]model.Post),
	}
}

func (s *PostStorage) CreatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = int64(len(s.posts))
	s.posts = append(s.posts, in)
	s.byID[in.ID] = in
	return in, nil
}

func (s *PostStorage) GetPostByID(_ context.Context, postID int64) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if post, ok := s.byID[postID]; ok {
		return post, nil
	}
	return model.Post{}, service.ErrNotFound
}

func (s *PostStorage) ListPosts(_ context.Context, params storage.ListPostsParams) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, 0, len(s.byID))
	for id := 1; id < len(s.posts); id++ {
		p := s.posts[id]
		if p.ID == 0 {
			continue
		}
		if params.TitleLike != "" && !strings.Contains(p.Title, params.TitleLike) {
			continue
		}
		if params.BodyLike != "" && !strings.Contains(p.Body, params.BodyLike) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *PostStorage) UpdatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[in.ID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	p.Title = in.Title
	p.Body = in.Body
	s.byID[p.ID] = p
	s.posts[p.ID] = p
	return p, nil
}

func (s *PostStorage) DeletePost(_ context.Context, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[postID]; !ok {
		return service.ErrNotFound
	}
	delete(s.byID, postID)
	s.posts[postID] = model.Post{}
	return nil
}
