package model

// An Article is a Markdown page addressed by its path.
// Paths are stored flat, the folder hierarchy is derived from them at query time.
type Article struct {
	Base `msgpack:",inline" storm:"inline"`

	Path     string `json:"path"      msgpack:"path"      storm:"unique" bun:",unique,notnull"`
	Title    string `json:"title"     msgpack:"title"`
	Content  string `json:"content"   msgpack:"content"`
	AuthorID int    `json:"author_id" msgpack:"author_id" storm:"index"`
}

// A Comment is a message left by a user on an article.
type Comment struct {
	Base `msgpack:",inline" storm:"inline"`

	Content   string `json:"content"    msgpack:"content"`
	AuthorID  int    `json:"author_id"  msgpack:"author_id"  storm:"index"`
	ArticleID int    `json:"article_id" msgpack:"article_id" storm:"index"`
}
