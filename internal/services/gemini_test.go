package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForEmbedding(t *testing.T) {
	short := "plain ascii resume text"
	assert.Equal(t, short, truncateForEmbedding(short))

	long := strings.Repeat("a", maxEmbedBytes+100)
	got := truncateForEmbedding(long)
	assert.Len(t, got, maxEmbedBytes)

	// 3-byte runes put the byte cap mid-sequence; the cut must back up to
	// a rune boundary and keep the text valid UTF-8.
	multibyte := strings.Repeat("日", maxEmbedBytes/3+100)
	got = truncateForEmbedding(multibyte)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxEmbedBytes)
	assert.Zero(t, len(got)%3)
}

func TestClassifyProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "http 429", err: fmt.Errorf("googleapi: Error 429: too many requests"), want: ErrProviderThrottled},
		{name: "grpc resource exhausted", err: fmt.Errorf("rpc error: code = RESOURCE_EXHAUSTED desc = quota exceeded"), want: ErrProviderThrottled},
		{name: "rate limit wording", err: fmt.Errorf("rate limit exceeded, retry later"), want: ErrProviderThrottled},
		{name: "quota wording", err: fmt.Errorf("Quota exceeded for requests per minute"), want: ErrProviderThrottled},
		{name: "server error", err: fmt.Errorf("googleapi: Error 500: internal error"), want: ErrProviderUnavailable},
		{name: "connection refused", err: fmt.Errorf("dial tcp: connection refused"), want: ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyProviderError(tt.err)
			assert.True(t, errors.Is(classified, tt.want), "got %v", classified)
			// The original message is preserved for logs.
			assert.Contains(t, classified.Error(), tt.err.Error())
		})
	}
}
