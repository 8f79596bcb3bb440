package database

import (
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a unique constraint violation.
		IsAlreadyExists(err error) bool

		UserInteraction
		SessionInteraction
		ArticleInteraction
		CommentInteraction
		TagInteraction
		FileInteraction
		CreatorInteraction
		SettingInteraction
		CodeInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id.
		FindUser(id int) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
		// FindUserByPhone returns the user for the given phone number.
		FindUserByPhone(phone string) (*model.User, error)
		// FindUsers returns a page of users and the total number of users.
		FindUsers(skip, limit int) ([]*model.User, int, error)
		// CountUsers returns the number of users.
		CountUsers() (int, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSessionByToken returns the session for the given token.
		FindSessionByToken(token string) (*model.Session, error)
		// DeleteSessionsByUserID removes all the sessions of the given user.
		DeleteSessionsByUserID(userID int) error
	}

	// An ArticleInteraction defines all the methods used to interact with article records.
	ArticleInteraction interface {
		// FindArticle returns the article for the given id.
		FindArticle(id int) (*model.Article, error)
		// FindArticlesByPath returns all the articles stored at exactly the given path, in store order.
		// An empty slice is returned when nothing matches.
		FindArticlesByPath(path string) ([]*model.Article, error)
		// FindArticlesByPathPrefix returns all the articles whose path starts with the given prefix.
		// The order is not specified.
		FindArticlesByPathPrefix(prefix string) ([]*model.Article, error)
		// FindArticles returns a page of articles, newest first, and the total number of articles.
		// limit equals to 0 means all articles.
		FindArticles(skip, limit int) ([]*model.Article, int, error)
		// SearchArticles returns the articles whose title or content contains the query, newest first.
		SearchArticles(query string) ([]*model.Article, error)
		// FindArticlesByTag returns the articles labelled with the given tag, newest first.
		FindArticlesByTag(tagID int) ([]*model.Article, error)
	}

	// A CommentInteraction defines all the methods used to interact with comment records.
	CommentInteraction interface {
		// FindComment returns the comment for the given id.
		FindComment(id int) (*model.Comment, error)
		// FindComments returns a page of comments, oldest first, and the total number of comments.
		// articleID equals to 0 means all articles.
		FindComments(articleID, skip, limit int) ([]*model.Comment, int, error)
		// DeleteCommentsByArticleID removes all the comments of the given article.
		DeleteCommentsByArticleID(articleID int) error
	}

	// A TagInteraction defines all the methods used to interact with tag records.
	TagInteraction interface {
		// FindTag returns the tag for the given id.
		FindTag(id int) (*model.Tag, error)
		// FindTagByName returns the tag for the given name.
		FindTagByName(name string) (*model.Tag, error)
		// FindTags returns a page of tags sorted by name and the total number of tags.
		FindTags(skip, limit int) ([]*model.Tag, int, error)
		// FindTagsByArticleID returns the tags of the given article sorted by name.
		FindTagsByArticleID(articleID int) ([]*model.Tag, error)
		// FindArticleTag returns the link between the given article and tag.
		FindArticleTag(articleID, tagID int) (*model.ArticleTag, error)
		// DeleteArticleTags removes the links matching the given ids. 0 matches any id.
		DeleteArticleTags(articleID, tagID int) error
	}

	// A FileInteraction defines all the methods used to interact with file records.
	FileInteraction interface {
		// FindFile returns the file for the given id.
		FindFile(id int) (*model.File, error)
		// FindFileByHash returns the file for the given content hash.
		FindFileByHash(hash string) (*model.File, error)
		// FindFiles returns a page of files, newest first, and the total number of files.
		FindFiles(skip, limit int) ([]*model.File, int, error)
	}

	// A CreatorInteraction defines all the methods used to interact with creator records.
	CreatorInteraction interface {
		// FindCreator returns the creator for the given id.
		FindCreator(id int) (*model.Creator, error)
		// FindCreatorByUserID returns the creator linked to the given user.
		FindCreatorByUserID(userID int) (*model.Creator, error)
		// FindCreators returns a page of creators sorted by id and the total number of creators.
		FindCreators(skip, limit int) ([]*model.Creator, int, error)
	}

	// A SettingInteraction defines all the methods used to interact with the settings record.
	SettingInteraction interface {
		// FindSetting returns the settings of the wiki.
		FindSetting() (*model.Setting, error)
	}

	// A CodeInteraction defines all the methods used to interact with verification codes.
	CodeInteraction interface {
		// FindVerificationCode returns the latest code sent to the given email for the given purpose.
		FindVerificationCode(email, purpose string) (*model.VerificationCode, error)
		// RevokeExpiredCodes removes from database all expired codes.
		RevokeExpiredCodes() error
	}
)

// Open returns a new database connection for the given driver.
func Open(driver, path string) (Client, error) {
	switch driver {
	case "", "storm":
		return StormOpen(path)
	case "sqlite", "sqlite3":
		return SQLiteOpen(path)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", driver)
	}
}
