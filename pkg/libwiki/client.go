package libwiki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

type (
	// A Client defines all interactions that can be performed on a Blue Wiki server.
	Client interface {
		// Version returns the version of the server.
		Version() (string, error)
		// Login connects the Client to the Blue Wiki server.
		Login(email, password string) error
		// Logout revokes the session of the Client.
		Logout() error
		// Session returns the authentication session.
		Session() Session
		// SetSession sets the authentication session used for requests sent to the server.
		SetSession(session Session)
		// Tree returns the folders and pages directly below the given path.
		Tree(path string) (*Listing, error)
		// Siblings returns the folders and pages next to the given page.
		Siblings(page string) (*Listing, error)
		// Article returns the article stored at the given path, with its HTML rendering when asked.
		Article(path string, html bool) (*Article, error)
		// Search returns the articles matching the given query.
		Search(query string) ([]Article, error)
	}

	p      map[string]interface{}
	client struct {
		http     *http.Client
		endpoint string
		session  Session
	}
)

// NewDefaultClient returns a new Client with default HTTP client.
func NewDefaultClient(endpoint string) (Client, error) {
	return NewClient(http.DefaultClient, endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, endpoint string) (Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported endpoint scheme: %q", u.Scheme)
	}
	return &client{endpoint: strings.TrimSuffix(endpoint, "/"), http: c}, nil
}

func (c *client) Version() (string, error) {
	var version struct {
		Version string `json:"version"`
	}
	err := c.do(http.MethodGet, "/api/version", nil, nil, &version)
	return version.Version, err
}

func (c *client) Login(email, password string) error {
	var session Session
	err := c.do(http.MethodPost, "/api/auth/login", nil, p{"email": email, "password": password}, &session)
	if err != nil {
		return err
	}

	c.session = session
	return nil
}

func (c *client) Logout() error {
	if c.session.Token == "" {
		return errors.New("no session defined")
	}

	if err := c.do(http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		return err
	}

	c.session = Session{}
	return nil
}

func (c *client) Session() Session {
	return c.session
}

func (c *client) SetSession(session Session) {
	c.session = session
}

func (c *client) Tree(path string) (*Listing, error) {
	query := url.Values{}
	query.Set("path", path)

	var listing Listing
	return &listing, c.do(http.MethodGet, "/api/tree", query, nil, &listing)
}

func (c *client) Siblings(page string) (*Listing, error) {
	query := url.Values{}
	query.Set("page", page)

	var listing Listing
	return &listing, c.do(http.MethodGet, "/api/pages/path", query, nil, &listing)
}

func (c *client) Article(path string, html bool) (*Article, error) {
	var query url.Values
	if html {
		query = url.Values{}
		query.Set("render", "html")
	}

	var article Article
	return &article, c.do(http.MethodGet, "/api/articles/by-path"+escape(path), query, nil, &article)
}

func (c *client) Search(q string) ([]Article, error) {
	query := url.Values{}
	query.Set("q", q)

	var result struct {
		Data []Article `json:"data"`
	}
	return result.Data, c.do(http.MethodGet, "/api/articles/search", query, nil, &result)
}

// do performs the request and decodes the JSON response into v when not nil.
func (c *client) do(method, route string, query url.Values, payload interface{}, v interface{}) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return errors.Wrap(err, "could not parse endpoint")
	}
	u = u.JoinPath(route)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	//
	// Build request
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "could not serialize payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Close = true
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	if c.session.Token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.session.Token))
	}

	//
	// Perform request
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseWikiError(res.Body, res.StatusCode)
	}

	//
	// Process response
	if v == nil {
		return nil
	}
	dec := json.NewDecoder(res.Body)
	return errors.Wrap(dec.Decode(v), "could not parse response")
}

// escape returns the escaped form of the given wiki path, keeping its separators.
func escape(p string) string {
	p = path.Clean("/" + p)
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
