package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontMatterPreservesInsertionOrder(t *testing.T) {
	fm := NewFrontMatter("title", "Hello", "date", "2023-05-01", "author", "jo")

	assert.Equal(t, []string{"title", "date", "author"}, fm.Keys())
	assert.Equal(t, 3, fm.Len())
}

func TestFrontMatterSetReplacesInPlace(t *testing.T) {
	fm := NewFrontMatter("a", "1", "b", "2")
	fm.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, fm.Keys())
	v, ok := fm.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestFrontMatterIgnoresDanglingKey(t *testing.T) {
	fm := NewFrontMatter("a", "1", "b")
	assert.Equal(t, []string{"a"}, fm.Keys())
}

func TestPostDate(t *testing.T) {
	p := Post{FrontMatter: NewFrontMatter("date", "2023-05-01")}
	d, ok := p.Date()
	assert.True(t, ok)
	assert.Equal(t, "2023-05-01", d)

	_, ok = Post{}.Date()
	assert.False(t, ok)
}

func TestFieldsReturnsCopy(t *testing.T) {
	fm := NewFrontMatter("a", "1")
	fields := fm.Fields()
	fields[0].Value = "changed"

	v, _ := fm.Get("a")
	assert.Equal(t, "1", v)
}
