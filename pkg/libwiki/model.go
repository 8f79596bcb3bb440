package libwiki

import "time"

type (
	// A Folder is a folder of the wiki tree.
	Folder struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}

	// A Page is a page of the wiki tree.
	Page struct {
		ID        int        `json:"id"`
		Path      string     `json:"path"`
		Title     string     `json:"title"`
		CreatedAt *time.Time `json:"created_at"`
	}

	// A Listing holds the content of a folder.
	Listing struct {
		Parent  string   `json:"parent"`
		Folders []Folder `json:"folders"`
		Pages   []Page   `json:"pages"`
	}

	// A Tag labels articles.
	Tag struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// An Article is a Markdown document stored at a path.
	Article struct {
		ID        int        `json:"id"`
		Path      string     `json:"path"`
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		HTML      string     `json:"html,omitempty"`
		AuthorID  int        `json:"author_id"`
		Tags      []Tag      `json:"tags"`
		CreatedAt *time.Time `json:"created_at"`
		UpdatedAt *time.Time `json:"updated_at"`
	}

	// A User is a wiki account.
	User struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	// A Session is the result of a successful login.
	Session struct {
		User     User      `json:"user"`
		Token    string    `json:"token"`
		ExpireAt time.Time `json:"expire_at"`
	}
)

// Expired returns true if the session is expired at the given time.
func (s Session) Expired(t time.Time) bool {
	return s.Token == "" || !t.Before(s.ExpireAt)
}
