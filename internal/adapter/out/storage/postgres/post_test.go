package postgres

import (
	"context"
	"errors"
	"postsapi/internal/adapter/out/storage"
	"postsapi/internal/model"
	"postsapi/internal/service"
	"regexp"
	"testing"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *PostStorage) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewPostStorage(mock, trmpgx.DefaultCtxGetter)
}

func postRows(posts ...model.Post) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "title", "body"})
	for _, p := range posts {
		rows.AddRow(p.ID, p.Title, p.Body)
	}
	return rows
}

func Test_listPostsQueryBuilder(t *testing.T) {
	tests := []struct {
		name     string
		params   storage.ListPostsParams
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no filters",
			params:   storage.ListPostsParams{},
			wantSQL:  "SELECT id, title, body FROM posts ORDER BY id ASC",
			wantArgs: nil,
		},
		{
			name:     "title filter",
			params:   storage.ListPostsParams{TitleLike: "whistles"},
			wantSQL:  "SELECT id, title, body FROM posts WHERE strpos(title, $1) > 0 ORDER BY id ASC",
			wantArgs: []any{"whistles"},
		},
		{
			name:     "both filters",
			params:   storage.ListPostsParams{TitleLike: "bells", BodyLike: "test1"},
			wantSQL:  "SELECT id, title, body FROM posts WHERE strpos(title, $1) > 0 AND strpos(body, $2) > 0 ORDER BY id ASC",
			wantArgs: []any{"bells", "test1"},
		},
		{
			name:     "wildcards are literal",
			params:   storage.ListPostsParams{BodyLike: "50%_off"},
			wantSQL:  "SELECT id, title, body FROM posts WHERE strpos(body, $1) > 0 ORDER BY id ASC",
			wantArgs: []any{"50%_off"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := listPostsQueryBuilder(tt.params).ToSql()
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				require.Empty(t, args)
				return
			}
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPostStorage_ListPosts(t *testing.T) {
	tests := []struct {
		name   string
		params storage.ListPostsParams
		setup  func(m pgxmock.PgxPoolIface)
		check  func(t *testing.T, got []model.Post, err error)
	}{
		{
			name:   "empty table",
			params: storage.ListPostsParams{},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT id, title, body FROM posts ORDER BY id ASC")).
					WillReturnRows(postRows())
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Empty(t, got)
			},
		},
		{
			name:   "body filter",
			params: storage.ListPostsParams{BodyLike: "2"},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("WHERE strpos(body, $1) > 0 ORDER BY id ASC")).
					WithArgs("2").
					WillReturnRows(postRows(
						model.Post{ID: 2, Title: "Post with whistles", Body: "test2"},
						model.Post{ID: 3, Title: "Post with bells and whistles", Body: "test32"},
					))
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.NoError(t, err)
				require.Len(t, got, 2)
				require.Equal(t, int64(2), got[0].ID)
				require.Equal(t, "test32", got[1].Body)
			},
		},
		{
			name:   "query error",
			params: storage.ListPostsParams{},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.Error(t, err)
				require.Nil(t, got)
				require.Contains(t, err.Error(), "exec error selecting posts")
			},
		},
		{
			name:   "scan error",
			params: storage.ListPostsParams{},
			setup: func(m pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "title", "body"}).
					AddRow("not-an-id", "t", "b")
				m.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			check: func(t *testing.T, got []model.Post, err error) {
				require.Error(t, err)
				require.Nil(t, got)
				require.Contains(t, err.Error(), "scan error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, st := newMock(t)
			tt.setup(mock)

			got, err := st.ListPosts(context.Background(), tt.params)
			tt.check(t, got, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostStorage_GetPostByID(t *testing.T) {
	tests := []struct {
		name   string
		postID int64
		setup  func(m pgxmock.PgxPoolIface, postID int64)
		check  func(t *testing.T, got model.Post, err error)
	}{
		{
			name:   "success",
			postID: 2,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT id, title, body FROM posts WHERE id = $1")).
					WithArgs(postID).
					WillReturnRows(postRows(model.Post{ID: 2, Title: "test Post B", Body: "testing b"}))
			},
			check: func(t *testing.T, got model.Post, err error) {
				require.NoError(t, err)
				require.Equal(t, model.Post{ID: 2, Title: "test Post B", Body: "testing b"}, got)
			},
		},
		{
			name:   "not found",
			postID: 404,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery("SELECT").WithArgs(postID).WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.ErrorIs(t, err, service.ErrNotFound)
			},
		},
		{
			name:   "db error",
			postID: 500,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery("SELECT").WithArgs(postID).WillReturnError(errors.New("db down"))
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.Error(t, err)
				require.NotErrorIs(t, err, service.ErrNotFound)
				require.Contains(t, err.Error(), "exec select post by id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, st := newMock(t)
			tt.setup(mock, tt.postID)

			got, err := st.GetPostByID(context.Background(), tt.postID)
			tt.check(t, got, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostStorage_CreatePost(t *testing.T) {
	tests := []struct {
		name  string
		input model.Post
		setup func(m pgxmock.PgxPoolIface)
		check func(t *testing.T, got model.Post, err error)
	}{
		{
			name:  "success",
			input: model.Post{Title: "Example Post", Body: "test post body"},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
					WithArgs("Example Post", "test post body").
					WillReturnRows(postRows(model.Post{ID: 1, Title: "Example Post", Body: "test post body"}))
			},
			check: func(t *testing.T, got model.Post, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(1), got.ID)
				require.Equal(t, "Example Post", got.Title)
				require.Equal(t, "test post body", got.Body)
			},
		},
		{
			name:  "db error",
			input: model.Post{Title: "bad", Body: "post"},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
					WithArgs("bad", "post").
					WillReturnError(errors.New("db down"))
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "exec error creating post")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, st := newMock(t)
			tt.setup(mock)

			got, err := st.CreatePost(context.Background(), tt.input)
			tt.check(t, got, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostStorage_UpdatePost(t *testing.T) {
	tests := []struct {
		name  string
		input model.Post
		setup func(m pgxmock.PgxPoolIface, in model.Post)
		check func(t *testing.T, got model.Post, err error)
	}{
		{
			name:  "success",
			input: model.Post{ID: 1, Title: "edited post title!", Body: "edited post body!"},
			setup: func(m pgxmock.PgxPoolIface, in model.Post) {
				m.ExpectQuery(regexp.QuoteMeta("UPDATE posts SET title = $1, body = $2 WHERE id = $3 RETURNING id, title, body")).
					WithArgs(in.Title, in.Body, in.ID).
					WillReturnRows(postRows(in))
			},
			check: func(t *testing.T, got model.Post, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(1), got.ID)
				require.Equal(t, "edited post title!", got.Title)
			},
		},
		{
			name:  "not found",
			input: model.Post{ID: 9, Title: "t", Body: "b"},
			setup: func(m pgxmock.PgxPoolIface, in model.Post) {
				m.ExpectQuery("UPDATE").
					WithArgs(in.Title, in.Body, in.ID).
					WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.ErrorIs(t, err, service.ErrNotFound)
			},
		},
		{
			name:  "db error",
			input: model.Post{ID: 9, Title: "t", Body: "b"},
			setup: func(m pgxmock.PgxPoolIface, in model.Post) {
				m.ExpectQuery("UPDATE").
					WithArgs(in.Title, in.Body, in.ID).
					WillReturnError(errors.New("update failed"))
			},
			check: func(t *testing.T, _ model.Post, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "exec update post")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, st := newMock(t)
			tt.setup(mock, tt.input)

			got, err := st.UpdatePost(context.Background(), tt.input)
			tt.check(t, got, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostStorage_DeletePost(t *testing.T) {
	tests := []struct {
		name   string
		postID int64
		setup  func(m pgxmock.PgxPoolIface, postID int64)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "success",
			postID: 10,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1 RETURNING id")).
					WithArgs(postID).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(postID))
			},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:   "not found",
			postID: 404,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery("DELETE").WithArgs(postID).WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, service.ErrNotFound)
			},
		},
		{
			name:   "db error",
			postID: 11,
			setup: func(m pgxmock.PgxPoolIface, postID int64) {
				m.ExpectQuery("DELETE").WithArgs(postID).WillReturnError(errors.New("delete failed"))
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "exec delete post")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, st := newMock(t)
			tt.setup(mock, tt.postID)

			err := st.DeletePost(context.Background(), tt.postID)
			tt.check(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostStorage_EnsureSchema(t *testing.T) {
	mock, st := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS posts")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, st.EnsureSchema(context.Background()))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	err := st.EnsureSchema(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "exec create posts table")

	require.NoError(t, mock.ExpectationsWereMet())
}
