// Package pathing derives where a post is written inside the archive.
//
// Layout:
//
//	<base>[/<yyyy>[/<MM>]]/[<yyyy-MM-dd>-]<slug>/index<ext>   (post folders)
//	<base>[/<yyyy>[/<MM>]]/[<yyyy-MM-dd>-]<slug><ext>         (flat files)
//
// Every function here is pure.
package pathing

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"postarchive/pkg/errors"
	"postarchive/pkg/models"
)

// IndexName is the file stem used when each post has its own folder
const IndexName = "index"

// Options selects the folder scheme
type Options struct {
	BaseDirectory    string
	YearMonthFolders bool
	YearFolders      bool
	PostFolders      bool
	PrefixDate       bool
	Extension        string
}

// needsDate reports whether any enabled option reads the post date
func (o Options) needsDate() bool {
	return o.YearMonthFolders || o.YearFolders || o.PrefixDate
}

// FileExtension returns the document extension with its leading dot, ".md" by default
func (o Options) FileExtension() string {
	if o.Extension == "" {
		return ".md"
	}
	if !strings.HasPrefix(o.Extension, ".") {
		return "." + o.Extension
	}
	return o.Extension
}

// dateLayouts are the ISO-8601 shapes accepted for the date field, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date or date-time. The result keeps the offset
// written in the value, so the calendar date is the one the author wrote.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized ISO-8601 date %q", value)
}

// postDate reads and parses the date front matter field
func postDate(post models.Post) (time.Time, error) {
	raw, ok := post.Date()
	if !ok {
		return time.Time{}, &errors.Error{
			Kind: errors.KindDateParse,
			Op:   "resolve path",
			Path: post.Meta.Slug,
			Err:  fmt.Errorf("missing date field"),
		}
	}
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, &errors.Error{
			Kind: errors.KindDateParse,
			Op:   "resolve path",
			Path: post.Meta.Slug,
			Err:  err,
		}
	}
	return t, nil
}

// DatePrefix formats the yyyy-MM-dd- prefix for folder and file names
func DatePrefix(t time.Time) string {
	return t.Format("2006-01-02") + "-"
}

// ResolveDir returns the directory a post's content file goes into
func ResolveDir(post models.Post, opts Options) (string, error) {
	dir := opts.BaseDirectory

	var dt time.Time
	if opts.needsDate() {
		var err error
		if dt, err = postDate(post); err != nil {
			return "", err
		}
	}

	if opts.YearMonthFolders {
		dir = filepath.Join(dir, dt.Format("2006"), dt.Format("01"))
	} else if opts.YearFolders {
		dir = filepath.Join(dir, dt.Format("2006"))
	}

	if opts.PostFolders {
		folder := post.Meta.Slug
		if opts.PrefixDate {
			folder = DatePrefix(dt) + folder
		}
		dir = filepath.Join(dir, folder)
	}

	return dir, nil
}

// ResolveFilename returns the content file name for a post
func ResolveFilename(post models.Post, opts Options) (string, error) {
	if opts.PostFolders {
		// the folder already carries the slug
		return IndexName + opts.FileExtension(), nil
	}

	name := post.Meta.Slug + opts.FileExtension()
	if opts.PrefixDate {
		dt, err := postDate(post)
		if err != nil {
			return "", err
		}
		name = DatePrefix(dt) + name
	}
	return name, nil
}

// ResolvePath joins ResolveDir and ResolveFilename
func ResolvePath(post models.Post, opts Options) (dir, file string, err error) {
	if dir, err = ResolveDir(post, opts); err != nil {
		return "", "", err
	}
	if file, err = ResolveFilename(post, opts); err != nil {
		return "", "", err
	}
	return dir, filepath.Join(dir, file), nil
}

// ImagesDir is the folder images are saved to, next to the post
func ImagesDir(postDir string) string {
	return filepath.Join(postDir, "images")
}
