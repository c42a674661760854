package service

import (
	"postsapi/internal/adapter/out/storage"
)

type ListPostsRequest struct {
	TitleLike string
	BodyLike  string
}

type CreatePostRequest struct {
	Title string
	Body  string
}

type UpdatePostRequest struct {
	ID    int64 `validate:"gt=0"`
	Title string
	Body  string
}

func toListPostsParams(in ListPostsRequest) storage.ListPostsParams {
	return storage.ListPostsParams{
		TitleLike: in.TitleLike,
		BodyLike:  in.BodyLike,
	}
}
