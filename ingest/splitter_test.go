package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks_EmptyText(t *testing.T) {
	assert.Nil(t, SplitChunks("", DefaultMaxTokens))
	assert.Nil(t, SplitChunks("   \n\t  ", DefaultMaxTokens))
}

func TestSplitChunks_SingleChunkUnderBudget(t *testing.T) {
	chunks := SplitChunks("aaaa bbbb cccc", DefaultMaxTokens)
	require.Len(t, chunks, 1)
	assert.Equal(t, "aaaa bbbb cccc", chunks[0])
}

func TestSplitChunks_ExactBudgetSingleChunk(t *testing.T) {
	// 10 four-character words cost exactly 10 tokens
	words := make([]string, 10)
	for i := range words {
		words[i] = "wxyz"
	}
	body := strings.Join(words, " ")

	chunks := SplitChunks(body, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0])
}

func TestSplitChunks_SplitsAtBudget(t *testing.T) {
	// 2001 one-token words against a 2000 budget split [2000, 1]
	words := make([]string, 2001)
	for i := range words {
		words[i] = "word"
	}
	body := strings.Join(words, " ")

	chunks := SplitChunks(body, 2000)
	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0]), 2000)
	assert.Len(t, strings.Fields(chunks[1]), 1)
}

func TestSplitChunks_Reconstruction(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
	}{
		{"short text", "the quick brown fox jumps over the lazy dog", 2},
		{"tiny budget", "alpha beta gamma delta epsilon", 1},
		{"mixed word lengths", "a bb ccc dddd eeeee ffffff ggggggg", 2},
		{"large budget", "one two three", 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitChunks(tt.text, tt.maxTokens)

			var got []string
			for _, chunk := range chunks {
				require.NotEmpty(t, chunk, "no emitted chunk may be empty")
				got = append(got, strings.Fields(chunk)...)
			}
			assert.Equal(t, strings.Fields(tt.text), got)
		})
	}
}

func TestSplitChunks_OversizedWordOwnChunk(t *testing.T) {
	// The middle word costs 25 tokens against a 10-token budget.
	big := strings.Repeat("x", 100)
	chunks := SplitChunks("aaaa "+big+" bbbb", 10)

	require.Len(t, chunks, 3)
	assert.Equal(t, "aaaa", chunks[0])
	assert.Equal(t, big, chunks[1])
	assert.Equal(t, "bbbb", chunks[2])
}

func TestSplitChunks_OversizedFirstWordNoEmptyChunk(t *testing.T) {
	big := strings.Repeat("y", 80)
	chunks := SplitChunks(big+" zzzz", 10)

	require.Len(t, chunks, 2)
	assert.Equal(t, big, chunks[0])
	assert.Equal(t, "zzzz", chunks[1])
}

func TestWordTokenCost_Truncates(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{"abcdefg", 1},
		{"abcdefgh", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, wordTokenCost(tt.word), "word %q", tt.word)
	}
}
