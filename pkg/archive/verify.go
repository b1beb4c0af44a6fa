package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"postarchive/pkg/document"
	"postarchive/pkg/pathing"
)

// VerifyFailure is a document that could not be read back
type VerifyFailure struct {
	Path string
	Err  error
}

// VerifyResult lists what Verify found under the archive root
type VerifyResult struct {
	Documents int
	Failures  []VerifyFailure
}

// OK reports whether every document parsed
func (r *VerifyResult) OK() bool {
	return len(r.Failures) == 0
}

// Verify walks the archive root and parses every document with the
// configured extension. Images and other files are ignored.
func Verify(opts pathing.Options) (*VerifyResult, error) {
	root := opts.BaseDirectory
	ext := opts.FileExtension()
	result := &VerifyResult{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		result.Documents++
		if err := verifyDocument(path); err != nil {
			result.Failures = append(result.Failures, VerifyFailure{Path: path, Err: err})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return result, nil
}

func verifyDocument(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	meta, _, err := document.Parse(f)
	if err != nil {
		return err
	}
	if len(meta) == 0 {
		return fmt.Errorf("empty front matter")
	}
	return nil
}
