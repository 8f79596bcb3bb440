package tree

import (
	"sort"
	"time"

	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/sirupsen/logrus"
)

type (
	// A Store gives access to the articles by path.
	Store interface {
		// FindArticlesByPath returns all the articles stored at exactly the given path, in store order.
		FindArticlesByPath(path string) ([]*model.Article, error)
		// FindArticlesByPathPrefix returns all the articles whose path starts with the given prefix.
		FindArticlesByPathPrefix(prefix string) ([]*model.Article, error)
	}

	// An Entry is a page appended to the root listing without being stored.
	Entry struct {
		ID    int    `json:"id"    koanf:"id"`
		Path  string `json:"path"  koanf:"path"`
		Title string `json:"title" koanf:"title"`
	}

	// A Folder is a synthetic folder derived from the paths of its descendants.
	Folder struct {
		Name      string    `json:"name"`
		Path      string    `json:"path"`
		CreatedAt time.Time `json:"created_at"`
	}

	// A Listing holds the immediate children of a path.
	Listing struct {
		Parent  string           `json:"parent"`
		Folders []Folder         `json:"folders"`
		Pages   []*model.Article `json:"pages"`
	}

	// A Resolver resolves paths against a Store.
	// It is stateless and safe for concurrent use.
	Resolver struct {
		store  Store
		pinned []Entry
		logger logrus.FieldLogger
	}
)

// DefaultPinned returns the entries appended to the root listing when none are configured.
func DefaultPinned() []Entry {
	return []Entry{{ID: -1, Path: "/creator", Title: "Creator"}}
}

// NewResolver returns a new Resolver.
func NewResolver(store Store, pinned []Entry, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Resolver{
		store:  store,
		pinned: pinned,
		logger: logger,
	}
}

// ResolveExact returns the article stored at the given path.
// Pinned entries are never resolved.
func (r *Resolver) ResolveExact(path string) (*model.Article, error) {
	path, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	articles, err := r.store.FindArticlesByPath(path)
	if err != nil {
		return nil, &UnavailableError{Op: "resolve", Path: path, Err: err}
	}

	switch len(articles) {
	case 0:
		return nil, ErrNotFound
	case 1:
	default:
		ids := make([]int, 0, len(articles))
		for _, article := range articles {
			ids = append(ids, article.ID)
		}

		r.logger.WithFields(logrus.Fields{
			"path":  path,
			"count": len(articles),
			"ids":   ids,
		}).Warn("several articles share the same path, using the first one")
	}

	return articles[0], nil
}

// ListChildren returns the folders and pages directly below the given path.
// Pages are sorted newest first.
func (r *Resolver) ListChildren(parent string) (*Listing, error) {
	parent, err := Normalize(parent)
	if err != nil {
		return nil, err
	}
	prefix := SearchPrefix(parent)

	articles, err := r.store.FindArticlesByPathPrefix(prefix)
	if err != nil {
		return nil, &UnavailableError{Op: "list", Path: parent, Err: err}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return newer(articles[i], articles[j])
	})

	names, pages := PartitionChildren(articles, prefix)

	now := time.Now().UTC()
	folders := make([]Folder, 0, len(names))
	for _, name := range names {
		folders = append(folders, Folder{
			Name:      name,
			Path:      Join(parent, name),
			CreatedAt: now,
		})
	}

	if parent == Root {
		stored := make(map[string]bool, len(pages))
		for _, page := range pages {
			stored[page.Path] = true
		}

		for _, entry := range r.pinned {
			// A stored article takes the place of its pinned entry.
			if stored[entry.Path] {
				continue
			}

			pages = append(pages, &model.Article{
				Base:  model.Base{ID: entry.ID},
				Path:  entry.Path,
				Title: entry.Title,
			})
		}
	}

	return &Listing{
		Parent:  parent,
		Folders: folders,
		Pages:   pages,
	}, nil
}

// ListSiblings returns the listing of the folder containing the given path.
func (r *Resolver) ListSiblings(path string) (*Listing, error) {
	path, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	return r.ListChildren(Parent(path))
}

func newer(a, b *model.Article) bool {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
	case a.CreatedAt == nil:
		return false
	case b.CreatedAt == nil:
		return true
	case !a.CreatedAt.Equal(*b.CreatedAt):
		return a.CreatedAt.After(*b.CreatedAt)
	}
	return a.ID > b.ID
}
