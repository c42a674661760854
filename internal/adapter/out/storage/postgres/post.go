package postgres

import (
	"context"
	"errors"
	"fmt"
	"postsapi/internal/adapter/out/storage"
	"postsapi/internal/model"
	"postsapi/internal/service"
	"postsapi/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

var postColumns = []string{
	tableinfo.PostIDColumn,
	tableinfo.PostTitleColumn,
	tableinfo.PostBodyColumn,
}

var createPostsTableSQL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGSERIAL PRIMARY KEY,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL
)`,
	tableinfo.PostsTableName,
	tableinfo.PostIDColumn,
	tableinfo.PostTitleColumn,
	tableinfo.PostBodyColumn,
)

// PostStorage resolves its executor on every call, so a transaction opened
// by the caller's manager is used when present in ctx.
type PostStorage struct {
	db     trmpgx.Tr
	getter *trmpgx.CtxGetter
}

func NewPostStorage(db trmpgx.Tr, getter *trmpgx.CtxGetter) *PostStorage {
	return &PostStorage{
		db:     db,
		getter: getter,
	}
}

// EnsureSchema creates the posts table when it does not exist yet.
func (s *PostStorage) EnsureSchema(ctx context.Context) error {
	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	if _, err := tr.Exec(ctx, createPostsTableSQL); err != nil {
		return fmt.Errorf("exec create posts table: %w", err)
	}
	return nil
}

func listPostsQueryBuilder(params storage.ListPostsParams) sq.SelectBuilder {
	qb := sq.
		Select(postColumns...).
		From(tableinfo.PostsTableName)

	if params.TitleLike != "" {
		qb = qb.Where(sq.Expr(fmt.Sprintf("strpos(%s, ?) > 0", tableinfo.PostTitleColumn), params.TitleLike))
	}
	if params.BodyLike != "" {
		qb = qb.Where(sq.Expr(fmt.Sprintf("strpos(%s, ?) > 0", tableinfo.PostBodyColumn), params.BodyLike))
	}

	return qb.
		OrderBy(tableinfo.PostIDColumn + " ASC").
		PlaceholderFormat(sq.Dollar)
}

func (s *PostStorage) ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, error) {
	query, args, err := listPostsQueryBuilder(params).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)

	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec error selecting posts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	var out model.Post

	query, args, err := sq.
		Select(postColumns...).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)

	if err := tr.QueryRow(ctx, query, args...).Scan(&out.ID, &out.Title, &out.Body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec select post by id: %w", err)
	}

	return out, nil
}

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	var out model.Post

	query, args, err := sq.
		Insert(tableinfo.PostsTableName).
		Columns(tableinfo.PostTitleColumn, tableinfo.PostBodyColumn).
		Values(in.Title, in.Body).
		Suffix(fmt.Sprintf("RETURNING %s, %s, %s",
			tableinfo.PostIDColumn,
			tableinfo.PostTitleColumn,
			tableinfo.PostBodyColumn,
		)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	if err := tr.QueryRow(ctx, query, args...).Scan(&out.ID, &out.Title, &out.Body); err != nil {
		return model.Post{}, fmt.Errorf("exec error creating post: %w", err)
	}

	return out, nil
}

func (s *PostStorage) UpdatePost(ctx context.Context, in model.Post) (model.Post, error) {
	var out model.Post

	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostTitleColumn, in.Title).
		Set(tableinfo.PostBodyColumn, in.Body).
		Where(sq.Eq{tableinfo.PostIDColumn: in.ID}).
		Suffix(fmt.Sprintf("RETURNING %s, %s, %s",
			tableinfo.PostIDColumn,
			tableinfo.PostTitleColumn,
			tableinfo.PostBodyColumn,
		)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	if err := tr.QueryRow(ctx, query, args...).Scan(&out.ID, &out.Title, &out.Body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec update post: %w", err)
	}

	return out, nil
}

func (s *PostStorage) DeletePost(ctx context.Context, postID int64) error {
	query, args, err := sq.
		Delete(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix(fmt.Sprintf("RETURNING %s", tableinfo.PostIDColumn)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)

	var deleted int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrNotFound
		}
		return fmt.Errorf("exec delete post: %w", err)
	}
	return nil
}
