// Package tree derives the wiki hierarchy from the flat list of article paths.
//
// No folder is stored: a folder exists as soon as an article lives below it, and
// vanishes with its last descendant. A Resolver turns a path into either the
// article stored at that path or the listing of the folders and pages found
// directly below it.
package tree
