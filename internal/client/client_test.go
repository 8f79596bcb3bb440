package client

import (
	"bytes"
	"testing"
	"time"

	"github.com/mdouchement/bluewiki/pkg/libwiki"
	"github.com/stretchr/testify/assert"
)

func TestSeal(t *testing.T) {
	cfg := Config{
		Endpoint: "https://wiki.nowhere.lan",
		Email:    "george@nowhere.lan",
		Session: libwiki.Session{
			User:     libwiki.User{ID: 1, Name: "George", Email: "george@nowhere.lan", Role: "USER"},
			Token:    "header.payload.signature",
			ExpireAt: time.Date(2042, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	ciphertext, err := seal(cfg, []byte("passphrase"))
	assert.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "george@nowhere.lan")

	plain, err := unseal(ciphertext, []byte("passphrase"))
	assert.NoError(t, err)
	assert.Equal(t, cfg, plain)

	_, err = unseal(ciphertext, []byte("wrong"))
	assert.EqualError(t, err, "could not decrypt credentials file: chacha20poly1305: message authentication failed")

	_, err = unseal(ciphertext[:10], []byte("passphrase"))
	assert.EqualError(t, err, "credentials file is truncated")
}

func TestPrintListing(t *testing.T) {
	var buf bytes.Buffer
	printListing(&buf, &libwiki.Listing{
		Parent:  "/",
		Folders: []libwiki.Folder{{Name: "guides", Path: "/guides"}},
		Pages:   []libwiki.Page{{ID: -1, Path: "/creator", Title: "Creator"}},
	})

	assert.Equal(t, "/guides/                                \n/creator                                 Creator\n", buf.String())
}
