package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("encode: %w", New(KindSizeLimitExceeded, "file too large"))

	assert.True(t, errors.Is(err, ErrSizeLimitExceeded))
	assert.False(t, errors.Is(err, ErrProvider))
	assert.Equal(t, KindSizeLimitExceeded, KindOf(err))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  Validation("Cannot specify both --path and --files"),
			want: "Cannot specify both --path and --files",
		},
		{
			name: "wrapped without message",
			err:  Wrap(KindExternalTool, errors.New("exit status 1"), ""),
			want: "exit status 1",
		},
		{
			name: "wrapped with message",
			err:  Wrap(KindExternalTool, errors.New("exit status 1"), "ffmpeg extract audio"),
			want: "ffmpeg extract audio: exit status 1",
		},
		{
			name: "provider with status",
			err:  &Error{Kind: KindProvider, Provider: "openai", Status: 401, Message: "unauthorized"},
			want: "openai (HTTP 401): unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestWithPathCopies(t *testing.T) {
	base := New(KindFileNotFound, "File not found: a.jpg")
	withPath := base.WithPath("a.jpg")

	assert.Empty(t, base.Path)
	assert.Equal(t, "a.jpg", withPath.Path)
}
