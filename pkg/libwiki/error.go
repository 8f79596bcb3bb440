package libwiki

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// A WikiError reprensents an HTTP error returned by Blue Wiki server.
type WikiError struct {
	StatusCode int
	Err        struct {
		Tag     string `json:"tag"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseWikiError(r io.Reader, code int) error {
	var werr WikiError
	dec := json.NewDecoder(r)
	if err := dec.Decode(&werr); err != nil {
		werr.Err.Message = http.StatusText(code)
	}
	werr.StatusCode = code
	return &werr
}

func (e *WikiError) Error() string {
	return e.Err.Message
}

// Tag returns the machine readable kind of the error.
func (e *WikiError) Tag() string {
	return e.Err.Tag
}

// IsNotFound returns true if err is a 404 returned by the server.
func IsNotFound(err error) bool {
	var werr *WikiError
	return errors.As(err, &werr) && werr.StatusCode == http.StatusNotFound
}
