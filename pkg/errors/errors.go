package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies the failures that can happen while materializing an archive
type Kind string

const (
	KindDateParse         Kind = "date_parse"
	KindDirectoryCreate   Kind = "directory_create"
	KindFileWrite         Kind = "file_write"
	KindDownloadTransport Kind = "download_transport"
	KindDownloadStatus    Kind = "download_status"
)

// Sentinels usable with errors.Is
var (
	ErrDateParse         = &Error{Kind: KindDateParse}
	ErrDirectoryCreate   = &Error{Kind: KindDirectoryCreate}
	ErrFileWrite         = &Error{Kind: KindFileWrite}
	ErrDownloadTransport = &Error{Kind: KindDownloadTransport}
	ErrDownloadStatus    = &Error{Kind: KindDownloadStatus}
)

// Error carries the kind of failure plus the path or URL it concerns
type Error struct {
	Kind       Kind
	Op         string
	Path       string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " path=%s", e.Path)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " url=%s", e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsWarning reports whether err is a soft failure that still produced output
func IsWarning(err error) bool {
	return KindOf(err) == KindDownloadStatus
}

// IsSuccessStatus reports whether an HTTP status code counts as a successful download
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
