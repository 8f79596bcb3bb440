package client

import (
	"fmt"
	"io"

	"github.com/mdouchement/bluewiki/pkg/libwiki"
	"github.com/pkg/errors"
)

// List prints the folders and pages below the given path.
func List(w io.Writer, path string) error {
	client, _, err := connect()
	if err != nil {
		return err
	}

	listing, err := client.Tree(path)
	if err != nil {
		return errors.Wrap(err, "could not list path")
	}

	printListing(w, listing)
	return nil
}

// Cat prints the Markdown content of the article at the given path.
func Cat(w io.Writer, path string, html bool) error {
	client, _, err := connect()
	if err != nil {
		return err
	}

	article, err := client.Article(path, html)
	if err != nil {
		if libwiki.IsNotFound(err) {
			return errors.Errorf("%s: no such article", path)
		}
		return errors.Wrap(err, "could not get article")
	}

	if html {
		fmt.Fprint(w, article.HTML)
		return nil
	}
	fmt.Fprintf(w, "# %s\n\n%s\n", article.Title, article.Content)
	return nil
}

// Search prints the articles matching the given query.
func Search(w io.Writer, query string) error {
	client, _, err := connect()
	if err != nil {
		return err
	}

	articles, err := client.Search(query)
	if err != nil {
		return errors.Wrap(err, "could not search")
	}

	for _, article := range articles {
		fmt.Fprintf(w, "%-40s %s\n", article.Path, article.Title)
	}
	return nil
}

func printListing(w io.Writer, listing *libwiki.Listing) {
	for _, folder := range listing.Folders {
		fmt.Fprintf(w, "%-40s\n", folder.Path+"/")
	}
	for _, page := range listing.Pages {
		fmt.Fprintf(w, "%-40s %s\n", page.Path, page.Title)
	}
}
