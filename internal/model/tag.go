package model

// A Tag labels articles.
type Tag struct {
	Base `msgpack:",inline" storm:"inline"`

	Name string `json:"name" msgpack:"name" storm:"unique" bun:",unique,notnull"`
}

// An ArticleTag links an article to a tag.
type ArticleTag struct {
	Base `msgpack:",inline" storm:"inline"`

	ArticleID int `json:"article_id" msgpack:"article_id" storm:"index"`
	TagID     int `json:"tag_id"     msgpack:"tag_id"     storm:"index"`
}
