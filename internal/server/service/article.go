package service

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/tree"
	"github.com/pkg/errors"
)

type (
	// An ArticleService is a service used to manage articles.
	ArticleService interface {
		Create(author *model.User, params ArticleParams) (*model.Article, error)
		Update(current *model.User, article *model.Article, params ArticleParams) (*model.Article, error)
		Delete(current *model.User, article *model.Article) error
		Tag(article *model.Article, name string) (*model.Tag, error)
	}

	// ArticleParams are used to create or update an article.
	ArticleParams struct {
		Path    string `json:"path"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	articleService struct {
		db database.Client
	}
)

// Validate implements validation.Validatable.
func (p ArticleParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Path, validation.Required, validation.Length(1, 1024)),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 256)),
	)
}

// NewArticle returns a new ArticleService.
func NewArticle(db database.Client) ArticleService {
	return &articleService{
		db: db,
	}
}

func (s *articleService) Create(author *model.User, params ArticleParams) (*model.Article, error) {
	path, err := s.path(0, params.Path)
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Path:     path,
		Title:    params.Title,
		Content:  params.Content,
		AuthorID: author.ID,
	}
	return article, s.save(article)
}

func (s *articleService) Update(current *model.User, article *model.Article, params ArticleParams) (*model.Article, error) {
	if article.AuthorID != current.ID {
		return nil, bwerror.Forbidden("Only the author can edit this article.")
	}

	path, err := s.path(article.ID, params.Path)
	if err != nil {
		return nil, err
	}

	article.Path = path
	article.Title = params.Title
	article.Content = params.Content
	return article, s.save(article)
}

func (s *articleService) Delete(current *model.User, article *model.Article) error {
	if article.AuthorID != current.ID && !current.IsAdmin() {
		return bwerror.Forbidden("Only the author or an administrator can delete this article.")
	}

	if err := s.db.DeleteCommentsByArticleID(article.ID); err != nil {
		return err
	}
	if err := s.db.DeleteArticleTags(article.ID, 0); err != nil {
		return err
	}
	return errors.Wrap(s.db.Delete(article), "could not delete article")
}

func (s *articleService) Tag(article *model.Article, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, bwerror.NewWithTagCode(http.StatusUnprocessableEntity, "invalid-params", "name: cannot be blank.")
	}

	tag, err := s.db.FindTagByName(name)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not get access to database")
		}

		tag = &model.Tag{Name: name}
		if err = s.db.Save(tag); err != nil {
			return nil, errors.Wrap(err, "could not persist tag")
		}
	}

	_, err = s.db.FindArticleTag(article.ID, tag.ID)
	if err == nil {
		return tag, nil
	}
	if !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}

	link := &model.ArticleTag{ArticleID: article.ID, TagID: tag.ID}
	return tag, errors.Wrap(s.db.Save(link), "could not persist article tag")
}

// path normalizes the given path and checks that no other article than id uses it.
func (s *articleService) path(id int, raw string) (string, error) {
	path, err := tree.Normalize(raw)
	if err != nil {
		return "", bwerror.NewWithTagCode(http.StatusBadRequest, "invalid-path", "Invalid article path.")
	}

	articles, err := s.db.FindArticlesByPath(path)
	if err != nil {
		return "", errors.Wrap(err, "could not get access to database")
	}
	for _, article := range articles {
		if article.ID != id {
			return "", pathTaken(path)
		}
	}
	return path, nil
}

func (s *articleService) save(article *model.Article) error {
	if err := s.db.Save(article); err != nil {
		if s.db.IsAlreadyExists(err) {
			return pathTaken(article.Path)
		}
		return errors.Wrap(err, "could not persist article")
	}
	return nil
}

func pathTaken(path string) error {
	return bwerror.NewWithTagCode(http.StatusConflict, "path-taken", "An article already exists at "+path+".")
}
