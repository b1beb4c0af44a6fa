// Package manifest reads the list of posts to archive from a YAML or JSON file.
//
// A manifest is either a bare list of posts or a mapping with a posts key:
//
//	posts:
//	  - frontmatter:
//	      title: Hello World
//	      date: 2023-05-01
//	    content: |
//	      First post.
//	    meta:
//	      slug: hello-world
//	      imageUrls:
//	        - https://example.com/a.png
//
// Front matter keys keep the order they are written in.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	"postarchive/pkg/models"
)

type rawPost struct {
	FrontMatter yaml.Node   `yaml:"frontmatter"`
	Content     string      `yaml:"content"`
	Meta        models.Meta `yaml:"meta"`
}

type rawManifest struct {
	Posts []rawPost `yaml:"posts"`
}

// Load reads and decodes the manifest at path
func Load(path string) ([]models.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	posts, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return posts, nil
}

// Decode reads a manifest document from r. JSON input is accepted as YAML.
func Decode(r io.Reader) ([]models.Post, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	var raw []rawPost
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raw); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var m rawManifest
		if err := doc.Decode(&m); err != nil {
			return nil, err
		}
		raw = m.Posts
	default:
		return nil, fmt.Errorf("line %d: expected a list of posts or a posts mapping", doc.Line)
	}

	posts := make([]models.Post, 0, len(raw))
	for i, rp := range raw {
		fm, err := frontMatterFromNode(&rp.FrontMatter)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		posts = append(posts, models.Post{
			FrontMatter: fm,
			Content:     rp.Content,
			Meta:        rp.Meta,
		})
	}
	return posts, nil
}

// frontMatterFromNode keeps mapping order and the scalar text as written, so
// an unquoted date stays exactly as it appears in the file.
func frontMatterFromNode(n *yaml.Node) (models.FrontMatter, error) {
	var fm models.FrontMatter
	if n.Kind == 0 {
		return fm, nil
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return fm, nil
	}
	if n.Kind != yaml.MappingNode {
		return fm, fmt.Errorf("line %d: frontmatter must be a mapping", n.Line)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			return fm, fmt.Errorf("line %d: frontmatter value for %q must be a scalar", value.Line, key.Value)
		}
		fm.Set(key.Value, value.Value)
	}
	return fm, nil
}

// Warning describes a post that will still be written but may not land
// where expected.
type Warning struct {
	Index   int
	Slug    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("post %d (%q): %s", w.Index, w.Slug, w.Message)
}

// Check looks for slugs that are empty, duplicated or not filesystem safe.
// Slugs are never rewritten.
func Check(posts []models.Post) []Warning {
	var warnings []Warning
	seen := make(map[string]int, len(posts))

	for i, post := range posts {
		s := post.Meta.Slug
		switch {
		case s == "":
			warnings = append(warnings, Warning{Index: i, Slug: s, Message: "slug is empty"})
			continue
		case !slug.IsValid(s):
			msg := "slug is not normalized"
			if normalized, err := slug.Normalize(s); err == nil && normalized != "" {
				msg = fmt.Sprintf("slug is not normalized, expected something like %q", normalized)
			}
			warnings = append(warnings, Warning{Index: i, Slug: s, Message: msg})
		}

		if first, ok := seen[s]; ok {
			warnings = append(warnings, Warning{
				Index:   i,
				Slug:    s,
				Message: fmt.Sprintf("slug also used by post %d, output may be overwritten", first),
			})
		} else {
			seen[s] = i
		}
	}
	return warnings
}
