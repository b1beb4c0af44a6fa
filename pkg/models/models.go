package models

// Field is a single front matter entry
type Field struct {
	Key   string
	Value string
}

// FrontMatter is an ordered set of string fields. Iteration order is insertion
// order, which is also the order fields are serialized in.
type FrontMatter struct {
	fields []Field
}

// NewFrontMatter builds front matter from key/value pairs given in order.
// A trailing key without a value is ignored.
func NewFrontMatter(pairs ...string) FrontMatter {
	var fm FrontMatter
	for i := 0; i+1 < len(pairs); i += 2 {
		fm.Set(pairs[i], pairs[i+1])
	}
	return fm
}

// Set adds a field, or replaces the value of an existing key in place
func (f *FrontMatter) Set(key, value string) {
	for i := range f.fields {
		if f.fields[i].Key == key {
			f.fields[i].Value = value
			return
		}
	}
	f.fields = append(f.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key
func (f FrontMatter) Get(key string) (string, bool) {
	for _, field := range f.fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in insertion order
func (f FrontMatter) Keys() []string {
	keys := make([]string, len(f.fields))
	for i, field := range f.fields {
		keys[i] = field.Key
	}
	return keys
}

// Fields returns a copy of the ordered fields
func (f FrontMatter) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Len returns the number of fields
func (f FrontMatter) Len() int {
	return len(f.fields)
}

// Meta holds the values the upstream stage derived for a post
type Meta struct {
	Slug      string   `yaml:"slug" json:"slug"`
	ImageURLs []string `yaml:"imageUrls" json:"imageUrls"`
}

// Post is one content item ready to be written to the archive
type Post struct {
	FrontMatter FrontMatter `yaml:"frontmatter" json:"frontmatter"`
	Content     string      `yaml:"content" json:"content"`
	Meta        Meta        `yaml:"meta" json:"meta"`
}

// Date returns the raw date front matter value
func (p Post) Date() (string, bool) {
	return p.FrontMatter.Get("date")
}
