// Package document converts posts to and from front-matter delimited text.
package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/adrg/frontmatter"

	"postarchive/pkg/models"
)

// Delimiter opens and closes the front matter block
const Delimiter = "---"

// Serialize renders front matter and body as
//
//	---
//	key: "value"
//	---
//
//	body
//
// Values are written verbatim between double quotes. A value holding a quote
// or a newline produces a document other tools may not read back.
func Serialize(fm models.FrontMatter, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	for _, field := range fm.Fields() {
		buf.WriteString(field.Key)
		buf.WriteString(`: "`)
		buf.WriteString(field.Value)
		buf.WriteString("\"\n")
	}
	buf.WriteString(Delimiter + "\n\n")
	buf.WriteString(body)
	buf.WriteString("\n")
	return buf.Bytes()
}

// SerializePost is Serialize applied to a post
func SerializePost(post models.Post) []byte {
	return Serialize(post.FrontMatter, post.Content)
}

// Parse reads a document written by Serialize back into its front matter
// values and body.
func Parse(r io.Reader) (map[string]any, []byte, error) {
	meta := map[string]any{}
	body, err := frontmatter.MustParse(r, &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return meta, body, nil
}
