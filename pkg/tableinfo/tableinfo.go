package tableinfo

const (
	PostsTableName = "posts"

	PostIDColumn    = "id"
	PostTitleColumn = "title"
	PostBodyColumn  = "body"
)
