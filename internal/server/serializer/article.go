package serializer

import "github.com/mdouchement/bluewiki/internal/model"

// Article serializes the render of an article with its tags.
func Article(m *model.Article, tags []*model.Tag) map[string]interface{} {
	if tags == nil {
		tags = []*model.Tag{}
	}

	return map[string]interface{}{
		"id":         m.ID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
		"path":       m.Path,
		"title":      m.Title,
		"content":    m.Content,
		"author_id":  m.AuthorID,
		"tags":       tags,
	}
}
