package database

import (
	"regexp"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

func stormModels() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Session{},
		&model.Article{},
		&model.Comment{},
		&model.Tag{},
		&model.ArticleTag{},
		&model.File{},
		&model.Creator{},
		&model.Setting{},
		&model.VerificationCode{},
	}
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range stormModels() {
		if err := db.Init(m); err != nil {
			return errors.Wrapf(err, "could not init %T index", m)
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range stormModels() {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrapf(err, "could not ReIndex %T", m)
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == 0 {
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

//
// Users
//

// FindUser returns the user for the given id.
func (c *strm) FindUser(id int) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindUserByPhone returns the user for the given phone number.
func (c *strm) FindUserByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Phone", phone, &user); err != nil {
		return nil, errors.Wrap(err, "find user by phone")
	}
	return &user, nil
}

// FindUsers returns a page of users and the total number of users.
func (c *strm) FindUsers(skip, limit int) ([]*model.User, int, error) {
	total, err := c.CountUsers()
	if err != nil {
		return nil, 0, err
	}

	users := make([]*model.User, 0)
	err = c.page(c.db.Select().OrderBy("CreatedAt", "ID"), skip, limit).Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find users")
	}
	return users, total, nil
}

// CountUsers returns the number of users.
func (c *strm) CountUsers() (int, error) {
	n, err := c.db.Count(&model.User{})
	return n, errors.Wrap(err, "could not count users")
}

//
// Sessions
//

// FindSessionByToken returns the session for the given token.
func (c *strm) FindSessionByToken(token string) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("Token", token, &session); err != nil {
		return nil, errors.Wrap(err, "find session by token")
	}
	return &session, nil
}

// DeleteSessionsByUserID removes all the sessions of the given user.
func (c *strm) DeleteSessionsByUserID(userID int) error {
	err := c.db.Select(q.Eq("UserID", userID)).Delete(&model.Session{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete sessions")
	}
	return nil
}

//
// Articles
//

// FindArticle returns the article for the given id.
func (c *strm) FindArticle(id int) (*model.Article, error) {
	var article model.Article
	if err := c.db.One("ID", id, &article); err != nil {
		return nil, errors.Wrap(err, "find article by id")
	}
	return &article, nil
}

// FindArticlesByPath returns all the articles stored at exactly the given path, in store order.
func (c *strm) FindArticlesByPath(path string) ([]*model.Article, error) {
	articles := make([]*model.Article, 0)
	err := c.db.Find("Path", path, &articles)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by path")
	}
	return articles, nil
}

// FindArticlesByPathPrefix returns all the articles whose path starts with the given prefix.
func (c *strm) FindArticlesByPathPrefix(prefix string) ([]*model.Article, error) {
	articles := make([]*model.Article, 0)
	err := c.db.Prefix("Path", prefix, &articles)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by path prefix")
	}
	return articles, nil
}

// FindArticles returns a page of articles, newest first, and the total number of articles.
func (c *strm) FindArticles(skip, limit int) ([]*model.Article, int, error) {
	total, err := c.db.Count(&model.Article{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not count articles")
	}

	articles := make([]*model.Article, 0)
	err = c.page(c.db.Select().OrderBy("CreatedAt", "ID").Reverse(), skip, limit).Find(&articles)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find articles")
	}
	return articles, total, nil
}

// SearchArticles returns the articles whose title or content contains the query, newest first.
func (c *strm) SearchArticles(query string) ([]*model.Article, error) {
	pattern := "(?i)" + regexp.QuoteMeta(query)

	articles := make([]*model.Article, 0)
	err := c.db.Select(q.Or(q.Re("Title", pattern), q.Re("Content", pattern))).
		OrderBy("CreatedAt", "ID").
		Reverse().
		Find(&articles)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not search articles")
	}
	return articles, nil
}

// FindArticlesByTag returns the articles labelled with the given tag, newest first.
func (c *strm) FindArticlesByTag(tagID int) ([]*model.Article, error) {
	links := make([]*model.ArticleTag, 0)
	err := c.db.Find("TagID", tagID, &links)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find article tags")
	}

	articles := make([]*model.Article, 0)
	if len(links) == 0 {
		return articles, nil
	}

	ids := make([]int, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ArticleID)
	}

	err = c.db.Select(q.In("ID", ids)).OrderBy("CreatedAt", "ID").Reverse().Find(&articles)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find articles by tag")
	}
	return articles, nil
}

//
// Comments
//

// FindComment returns the comment for the given id.
func (c *strm) FindComment(id int) (*model.Comment, error) {
	var comment model.Comment
	if err := c.db.One("ID", id, &comment); err != nil {
		return nil, errors.Wrap(err, "find comment by id")
	}
	return &comment, nil
}

// FindComments returns a page of comments, oldest first, and the total number of comments.
func (c *strm) FindComments(articleID, skip, limit int) ([]*model.Comment, int, error) {
	var matchers []q.Matcher
	if articleID != 0 {
		matchers = append(matchers, q.Eq("ArticleID", articleID))
	}

	total, err := c.db.Select(matchers...).Count(&model.Comment{})
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not count comments")
	}

	comments := make([]*model.Comment, 0)
	err = c.page(c.db.Select(matchers...).OrderBy("CreatedAt", "ID"), skip, limit).Find(&comments)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find comments")
	}
	return comments, total, nil
}

// DeleteCommentsByArticleID removes all the comments of the given article.
func (c *strm) DeleteCommentsByArticleID(articleID int) error {
	err := c.db.Select(q.Eq("ArticleID", articleID)).Delete(&model.Comment{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete comments")
	}
	return nil
}

//
// Tags
//

// FindTag returns the tag for the given id.
func (c *strm) FindTag(id int) (*model.Tag, error) {
	var tag model.Tag
	if err := c.db.One("ID", id, &tag); err != nil {
		return nil, errors.Wrap(err, "find tag by id")
	}
	return &tag, nil
}

// FindTagByName returns the tag for the given name.
func (c *strm) FindTagByName(name string) (*model.Tag, error) {
	var tag model.Tag
	if err := c.db.One("Name", name, &tag); err != nil {
		return nil, errors.Wrap(err, "find tag by name")
	}
	return &tag, nil
}

// FindTags returns a page of tags sorted by name and the total number of tags.
func (c *strm) FindTags(skip, limit int) ([]*model.Tag, int, error) {
	total, err := c.db.Count(&model.Tag{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not count tags")
	}

	tags := make([]*model.Tag, 0)
	err = c.page(c.db.Select().OrderBy("Name"), skip, limit).Find(&tags)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find tags")
	}
	return tags, total, nil
}

// FindTagsByArticleID returns the tags of the given article sorted by name.
func (c *strm) FindTagsByArticleID(articleID int) ([]*model.Tag, error) {
	links := make([]*model.ArticleTag, 0)
	err := c.db.Find("ArticleID", articleID, &links)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find article tags")
	}

	tags := make([]*model.Tag, 0)
	if len(links) == 0 {
		return tags, nil
	}

	ids := make([]int, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.TagID)
	}

	err = c.db.Select(q.In("ID", ids)).OrderBy("Name").Find(&tags)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find tags by article")
	}
	return tags, nil
}

// FindArticleTag returns the link between the given article and tag.
func (c *strm) FindArticleTag(articleID, tagID int) (*model.ArticleTag, error) {
	var link model.ArticleTag
	err := c.db.Select(q.Eq("ArticleID", articleID), q.Eq("TagID", tagID)).First(&link)
	if err != nil {
		return nil, errors.Wrap(err, "find article tag")
	}
	return &link, nil
}

// DeleteArticleTags removes the links matching the given ids. 0 matches any id.
func (c *strm) DeleteArticleTags(articleID, tagID int) error {
	var matchers []q.Matcher
	if articleID != 0 {
		matchers = append(matchers, q.Eq("ArticleID", articleID))
	}
	if tagID != 0 {
		matchers = append(matchers, q.Eq("TagID", tagID))
	}

	err := c.db.Select(matchers...).Delete(&model.ArticleTag{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete article tags")
	}
	return nil
}

//
// Files
//

// FindFile returns the file for the given id.
func (c *strm) FindFile(id int) (*model.File, error) {
	var file model.File
	if err := c.db.One("ID", id, &file); err != nil {
		return nil, errors.Wrap(err, "find file by id")
	}
	return &file, nil
}

// FindFileByHash returns the file for the given content hash.
func (c *strm) FindFileByHash(hash string) (*model.File, error) {
	var file model.File
	if err := c.db.One("Hash", hash, &file); err != nil {
		return nil, errors.Wrap(err, "find file by hash")
	}
	return &file, nil
}

// FindFiles returns a page of files, newest first, and the total number of files.
func (c *strm) FindFiles(skip, limit int) ([]*model.File, int, error) {
	total, err := c.db.Count(&model.File{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not count files")
	}

	files := make([]*model.File, 0)
	err = c.page(c.db.Select().OrderBy("CreatedAt", "ID").Reverse(), skip, limit).Find(&files)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find files")
	}
	return files, total, nil
}

//
// Creators
//

// FindCreator returns the creator for the given id.
func (c *strm) FindCreator(id int) (*model.Creator, error) {
	var creator model.Creator
	if err := c.db.One("ID", id, &creator); err != nil {
		return nil, errors.Wrap(err, "find creator by id")
	}
	return &creator, nil
}

// FindCreatorByUserID returns the creator linked to the given user.
func (c *strm) FindCreatorByUserID(userID int) (*model.Creator, error) {
	var creator model.Creator
	if err := c.db.Select(q.Eq("UserID", userID)).OrderBy("ID").First(&creator); err != nil {
		return nil, errors.Wrap(err, "find creator by user id")
	}
	return &creator, nil
}

// FindCreators returns a page of creators sorted by id and the total number of creators.
func (c *strm) FindCreators(skip, limit int) ([]*model.Creator, int, error) {
	total, err := c.db.Count(&model.Creator{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not count creators")
	}

	creators := make([]*model.Creator, 0)
	err = c.page(c.db.Select().OrderBy("ID"), skip, limit).Find(&creators)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find creators")
	}
	return creators, total, nil
}

//
// Settings
//

// FindSetting returns the settings of the wiki.
func (c *strm) FindSetting() (*model.Setting, error) {
	var setting model.Setting
	if err := c.db.Select().OrderBy("ID").First(&setting); err != nil {
		return nil, errors.Wrap(err, "find setting")
	}
	return &setting, nil
}

//
// Verification codes
//

// FindVerificationCode returns the latest code sent to the given email for the given purpose.
func (c *strm) FindVerificationCode(email, purpose string) (*model.VerificationCode, error) {
	var code model.VerificationCode
	err := c.db.Select(q.Eq("Email", email), q.Eq("Purpose", purpose)).OrderBy("CreatedAt", "ID").Reverse().First(&code)
	if err != nil {
		return nil, errors.Wrap(err, "find verification code")
	}
	return &code, nil
}

// RevokeExpiredCodes removes from database all expired codes.
func (c *strm) RevokeExpiredCodes() error {
	err := c.db.Select(q.Lte("ExpireAt", time.Now().UTC())).Delete(&model.VerificationCode{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not revoke expired codes")
	}
	return nil
}

func (c *strm) page(query storm.Query, skip, limit int) storm.Query {
	if skip > 0 {
		query = query.Skip(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}
