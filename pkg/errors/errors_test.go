package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := &Error{Kind: KindFileWrite, Path: "out/a.md", Err: fs.ErrPermission}
	wrapped := fmt.Errorf("writing post: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrFileWrite))
	assert.False(t, stderrors.Is(wrapped, ErrDirectoryCreate))
	assert.True(t, stderrors.Is(wrapped, fs.ErrPermission))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindDownloadStatus, Op: "fetch", URL: "http://x/a.png", StatusCode: 404}
	assert.Equal(t, "download_status (fetch) url=http://x/a.png status=404", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindDateParse, KindOf(&Error{Kind: KindDateParse, Op: "resolve", Err: stderrors.New("bad")}))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsWarning(t *testing.T) {
	assert.True(t, IsWarning(&Error{Kind: KindDownloadStatus}))
	assert.False(t, IsWarning(&Error{Kind: KindDownloadTransport}))
	assert.False(t, IsWarning(nil))
}

func TestIsSuccessStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, true},
		{204, true},
		{299, true},
		{301, false},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSuccessStatus(tt.code), "status %d", tt.code)
	}
}
