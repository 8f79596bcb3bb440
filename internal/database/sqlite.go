package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type sqlite struct {
	ctx context.Context
	db  *bun.DB
}

// SQLiteOpen returns a new SQLite database connection.
// Tables are created when they do not exist.
func SQLiteOpen(database string) (Client, error) {
	sqldb, err := sql.Open("sqlite3", "file:"+database+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}
	// SQLite serializes writers anyway.
	sqldb.SetMaxOpenConns(1)

	c := &sqlite{
		ctx: context.Background(),
		db:  bun.NewDB(sqldb, sqlitedialect.New()),
	}

	for _, m := range stormModels() {
		_, err := c.db.NewCreateTable().Model(m).IfNotExists().Exec(c.ctx)
		if err != nil {
			c.db.Close()
			return nil, errors.Wrapf(err, "could not create %T table", m)
		}
	}

	return c, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *sqlite) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == 0 {
		m.SetCreatedAt(t)
		_, err := c.db.NewInsert().Model(m).Exec(c.ctx)
		return errors.Wrap(err, "could not save the model")
	}

	_, err := c.db.NewUpdate().Model(m).WherePK().Exec(c.ctx)
	return errors.Wrap(err, "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *sqlite) Delete(m model.Model) error {
	_, err := c.db.NewDelete().Model(m).WherePK().Exec(c.ctx)
	return errors.Wrap(err, "could not delete the model")
}

// Close the database.
func (c *sqlite) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *sqlite) IsNotFound(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *sqlite) IsAlreadyExists(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

//
// Users
//

func (c *sqlite) FindUser(id int) (*model.User, error) {
	var user model.User
	err := c.db.NewSelect().Model(&user).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

func (c *sqlite) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	err := c.db.NewSelect().Model(&user).Where("email = ?", email).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

func (c *sqlite) FindUserByPhone(phone string) (*model.User, error) {
	var user model.User
	err := c.db.NewSelect().Model(&user).Where("phone = ?", phone).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find user by phone")
	}
	return &user, nil
}

func (c *sqlite) FindUsers(skip, limit int) ([]*model.User, int, error) {
	users := make([]*model.User, 0)
	total, err := c.db.NewSelect().Model(&users).
		Order("created_at ASC", "id ASC").
		Offset(skip).
		Limit(limit).
		ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find users")
	}
	return users, total, nil
}

func (c *sqlite) CountUsers() (int, error) {
	n, err := c.db.NewSelect().Model((*model.User)(nil)).Count(c.ctx)
	return n, errors.Wrap(err, "could not count users")
}

//
// Sessions
//

func (c *sqlite) FindSessionByToken(token string) (*model.Session, error) {
	var session model.Session
	err := c.db.NewSelect().Model(&session).Where("token = ?", token).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find session by token")
	}
	return &session, nil
}

func (c *sqlite) DeleteSessionsByUserID(userID int) error {
	_, err := c.db.NewDelete().Model((*model.Session)(nil)).Where("user_id = ?", userID).Exec(c.ctx)
	return errors.Wrap(err, "could not delete sessions")
}

//
// Articles
//

func (c *sqlite) FindArticle(id int) (*model.Article, error) {
	var article model.Article
	err := c.db.NewSelect().Model(&article).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find article by id")
	}
	return &article, nil
}

func (c *sqlite) FindArticlesByPath(path string) ([]*model.Article, error) {
	articles := make([]*model.Article, 0)
	err := c.db.NewSelect().Model(&articles).Where("path = ?", path).Order("id ASC").Scan(c.ctx)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by path")
	}
	return articles, nil
}

func (c *sqlite) FindArticlesByPathPrefix(prefix string) ([]*model.Article, error) {
	articles := make([]*model.Article, 0)
	err := c.db.NewSelect().Model(&articles).Where(`path LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").Scan(c.ctx)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by path prefix")
	}
	return articles, nil
}

func (c *sqlite) FindArticles(skip, limit int) ([]*model.Article, int, error) {
	articles := make([]*model.Article, 0)
	total, err := c.db.NewSelect().Model(&articles).
		Order("created_at DESC", "id DESC").
		Offset(skip).
		Limit(limit).
		ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find articles")
	}
	return articles, total, nil
}

func (c *sqlite) SearchArticles(query string) ([]*model.Article, error) {
	pattern := "%" + escapeLike(query) + "%"

	articles := make([]*model.Article, 0)
	err := c.db.NewSelect().Model(&articles).
		Where(`(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("created_at DESC", "id DESC").
		Scan(c.ctx)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not search articles")
	}
	return articles, nil
}

func (c *sqlite) FindArticlesByTag(tagID int) ([]*model.Article, error) {
	articles := make([]*model.Article, 0)
	err := c.db.NewSelect().Model(&articles).
		Where("id IN (SELECT article_id FROM article_tags WHERE tag_id = ?)", tagID).
		Order("created_at DESC", "id DESC").
		Scan(c.ctx)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by tag")
	}
	return articles, nil
}

//
// Comments
//

func (c *sqlite) FindComment(id int) (*model.Comment, error) {
	var comment model.Comment
	err := c.db.NewSelect().Model(&comment).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find comment by id")
	}
	return &comment, nil
}

func (c *sqlite) FindComments(articleID, skip, limit int) ([]*model.Comment, int, error) {
	comments := make([]*model.Comment, 0)
	query := c.db.NewSelect().Model(&comments).
		Order("created_at ASC", "id ASC").
		Offset(skip).
		Limit(limit)
	if articleID != 0 {
		query = query.Where("article_id = ?", articleID)
	}

	total, err := query.ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find comments")
	}
	return comments, total, nil
}

func (c *sqlite) DeleteCommentsByArticleID(articleID int) error {
	_, err := c.db.NewDelete().Model((*model.Comment)(nil)).Where("article_id = ?", articleID).Exec(c.ctx)
	return errors.Wrap(err, "could not delete comments")
}

//
// Tags
//

func (c *sqlite) FindTag(id int) (*model.Tag, error) {
	var tag model.Tag
	err := c.db.NewSelect().Model(&tag).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find tag by id")
	}
	return &tag, nil
}

func (c *sqlite) FindTagByName(name string) (*model.Tag, error) {
	var tag model.Tag
	err := c.db.NewSelect().Model(&tag).Where("name = ?", name).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find tag by name")
	}
	return &tag, nil
}

func (c *sqlite) FindTags(skip, limit int) ([]*model.Tag, int, error) {
	tags := make([]*model.Tag, 0)
	total, err := c.db.NewSelect().Model(&tags).
		Order("name ASC").
		Offset(skip).
		Limit(limit).
		ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find tags")
	}
	return tags, total, nil
}

func (c *sqlite) FindTagsByArticleID(articleID int) ([]*model.Tag, error) {
	tags := make([]*model.Tag, 0)
	err := c.db.NewSelect().Model(&tags).
		Where("id IN (SELECT tag_id FROM article_tags WHERE article_id = ?)", articleID).
		Order("name ASC").
		Scan(c.ctx)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find tags by article")
	}
	return tags, nil
}

func (c *sqlite) FindArticleTag(articleID, tagID int) (*model.ArticleTag, error) {
	var link model.ArticleTag
	err := c.db.NewSelect().Model(&link).
		Where("article_id = ?", articleID).
		Where("tag_id = ?", tagID).
		Limit(1).
		Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find article tag")
	}
	return &link, nil
}

func (c *sqlite) DeleteArticleTags(articleID, tagID int) error {
	query := c.db.NewDelete().Model((*model.ArticleTag)(nil)).Where("1 = 1")
	if articleID != 0 {
		query = query.Where("article_id = ?", articleID)
	}
	if tagID != 0 {
		query = query.Where("tag_id = ?", tagID)
	}

	_, err := query.Exec(c.ctx)
	return errors.Wrap(err, "could not delete article tags")
}

//
// Files
//

func (c *sqlite) FindFile(id int) (*model.File, error) {
	var file model.File
	err := c.db.NewSelect().Model(&file).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find file by id")
	}
	return &file, nil
}

func (c *sqlite) FindFileByHash(hash string) (*model.File, error) {
	var file model.File
	err := c.db.NewSelect().Model(&file).Where("hash = ?", hash).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find file by hash")
	}
	return &file, nil
}

func (c *sqlite) FindFiles(skip, limit int) ([]*model.File, int, error) {
	files := make([]*model.File, 0)
	total, err := c.db.NewSelect().Model(&files).
		Order("created_at DESC", "id DESC").
		Offset(skip).
		Limit(limit).
		ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find files")
	}
	return files, total, nil
}

//
// Creators
//

func (c *sqlite) FindCreator(id int) (*model.Creator, error) {
	var creator model.Creator
	err := c.db.NewSelect().Model(&creator).Where("id = ?", id).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find creator by id")
	}
	return &creator, nil
}

func (c *sqlite) FindCreatorByUserID(userID int) (*model.Creator, error) {
	var creator model.Creator
	err := c.db.NewSelect().Model(&creator).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(1).
		Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find creator by user id")
	}
	return &creator, nil
}

func (c *sqlite) FindCreators(skip, limit int) ([]*model.Creator, int, error) {
	creators := make([]*model.Creator, 0)
	total, err := c.db.NewSelect().Model(&creators).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		ScanAndCount(c.ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not find creators")
	}
	return creators, total, nil
}

//
// Settings
//

func (c *sqlite) FindSetting() (*model.Setting, error) {
	var setting model.Setting
	err := c.db.NewSelect().Model(&setting).Order("id ASC").Limit(1).Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find setting")
	}
	return &setting, nil
}

//
// Verification codes
//

func (c *sqlite) FindVerificationCode(email, purpose string) (*model.VerificationCode, error) {
	var code model.VerificationCode
	err := c.db.NewSelect().Model(&code).
		Where("email = ?", email).
		Where("purpose = ?", purpose).
		Order("created_at DESC", "id DESC").
		Limit(1).
		Scan(c.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find verification code")
	}
	return &code, nil
}

func (c *sqlite) RevokeExpiredCodes() error {
	_, err := c.db.NewDelete().Model((*model.VerificationCode)(nil)).
		Where("expire_at <= ?", time.Now().UTC()).
		Exec(c.ctx)
	return errors.Wrap(err, "could not revoke expired codes")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
