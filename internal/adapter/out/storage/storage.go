package storage

// ListPostsParams holds optional substring filters. An empty value disables the filter.
type ListPostsParams struct {
	TitleLike string
	BodyLike  string
}
