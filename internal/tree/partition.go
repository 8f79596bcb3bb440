package tree

import (
	"sort"
	"strings"

	"github.com/mdouchement/bluewiki/internal/model"
)

// PartitionChildren splits the articles found under prefix into the immediate children of the prefix.
// Articles living deeper contribute the name of their first segment to folders, sorted by name.
// Articles one level below are returned as pages, in input order.
// An article stored at the prefix itself is neither a folder nor a page.
func PartitionChildren(items []*model.Article, prefix string) (folders []string, pages []*model.Article) {
	folders = []string{}
	pages = []*model.Article{}
	seen := map[string]bool{}

	for _, item := range items {
		if !strings.HasPrefix(item.Path, prefix) {
			continue
		}

		segments := split(item.Path[len(prefix):])
		switch len(segments) {
		case 0:
			// The parent itself.
		case 1:
			pages = append(pages, item)
		default:
			if !seen[segments[0]] {
				seen[segments[0]] = true
				folders = append(folders, segments[0])
			}
		}
	}

	sort.Strings(folders)
	return folders, pages
}
