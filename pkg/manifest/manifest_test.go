package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postarchive/pkg/models"
)

const yamlManifest = `
posts:
  - frontmatter:
      title: Hello World
      date: 2023-05-01
      author: "Ada"
      draft: false
    content: |
      First post.
    meta:
      slug: hello-world
      imageUrls:
        - http://x/a.png
        - http://x/b.png
  - frontmatter:
      zebra: "z"
      alpha: "a"
    content: Second
    meta:
      slug: second
`

func TestDecodeYAMLPreservesOrder(t *testing.T) {
	posts, err := Decode(strings.NewReader(yamlManifest))
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, []string{"title", "date", "author", "draft"}, first.FrontMatter.Keys())
	date, ok := first.Date()
	assert.True(t, ok)
	assert.Equal(t, "2023-05-01", date)
	draft, _ := first.FrontMatter.Get("draft")
	assert.Equal(t, "false", draft)
	assert.Equal(t, "First post.\n", first.Content)
	assert.Equal(t, "hello-world", first.Meta.Slug)
	assert.Equal(t, []string{"http://x/a.png", "http://x/b.png"}, first.Meta.ImageURLs)

	assert.Equal(t, []string{"zebra", "alpha"}, posts[1].FrontMatter.Keys())
	assert.Empty(t, posts[1].Meta.ImageURLs)
}

func TestDecodeJSONList(t *testing.T) {
	input := `[
  {"frontmatter": {"title": "J", "date": "2024-01-01T10:00:00Z"},
   "content": "from json",
   "meta": {"slug": "j", "imageUrls": ["http://x/j.png"]}}
]`

	posts, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"title", "date"}, posts[0].FrontMatter.Keys())
	assert.Equal(t, "from json", posts[0].Content)
	assert.Equal(t, []string{"http://x/j.png"}, posts[0].Meta.ImageURLs)
}

func TestDecodeEdgeCases(t *testing.T) {
	posts, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, err = Decode(strings.NewReader("- meta:\n    slug: bare\n"))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 0, posts[0].FrontMatter.Len())

	posts, err = Decode(strings.NewReader("- frontmatter:\n  meta:\n    slug: nulled\n"))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 0, posts[0].FrontMatter.Len())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"scalar document", "just text"},
		{"frontmatter list", "- frontmatter: [a, b]\n"},
		{"nested value", "- frontmatter:\n    tags:\n      - a\n"},
		{"invalid yaml", "posts: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlManifest), 0644))

	posts, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	posts := []models.Post{
		{Meta: models.Meta{Slug: "hello-world"}},
		{Meta: models.Meta{Slug: ""}},
		{Meta: models.Meta{Slug: "Hello World!"}},
		{Meta: models.Meta{Slug: "hello-world"}},
	}

	warnings := Check(posts)
	require.Len(t, warnings, 3)

	assert.Equal(t, 1, warnings[0].Index)
	assert.Contains(t, warnings[0].Message, "empty")

	assert.Equal(t, 2, warnings[1].Index)
	assert.Contains(t, warnings[1].Message, "not normalized")

	assert.Equal(t, 3, warnings[2].Index)
	assert.Contains(t, warnings[2].Message, "post 0")
	assert.Contains(t, warnings[2].String(), `"hello-world"`)

	// slugs are reported, not rewritten
	assert.Equal(t, "Hello World!", posts[2].Meta.Slug)
}
