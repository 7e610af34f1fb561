package lyrics

import (
	"testing"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLRC_TimedLines(t *testing.T) {
	raw := "[00:12.50]Hello\n[00:15.00]World"

	lines := ParseLRC(raw)
	require.Len(t, lines, 2)

	assert.Equal(t, domain.LyricLine{Time: 12.5, Text: "Hello"}, lines[0])
	assert.Equal(t, domain.LyricLine{Time: 15.0, Text: "World"}, lines[1])
}

func TestParseLRC_DropsEmptyAndUntaggedLines(t *testing.T) {
	raw := "[ti:Some Title]\n" + // metadata tag, no timestamp
		"[00:01.00]First\n" +
		"[00:02.00]\n" + // timestamp with no text
		"plain text without tag\n" +
		"[00:03.25]  Second  \n"

	lines := ParseLRC(raw)
	require.Len(t, lines, 2)

	assert.Equal(t, "First", lines[0].Text)
	assert.Equal(t, "Second", lines[1].Text)
	assert.InDelta(t, 3.25, lines[1].Time, 1e-9)
}

func TestParseLRC_Empty(t *testing.T) {
	assert.Nil(t, ParseLRC(""))
	assert.Nil(t, ParseLRC("no tags here\nat all"))
}

func TestActiveLineIndex(t *testing.T) {
	lines := ParseLRC("[00:12.50]Hello\n[00:15.00]World")

	// Between the two timestamps: the first line is active.
	assert.Equal(t, 0, ActiveLineIndex(lines, 13, -1))

	// Past the final timestamp: the last line stays active.
	assert.Equal(t, 1, ActiveLineIndex(lines, 16, 0))

	// Before the first timestamp: the previous index is kept.
	assert.Equal(t, -1, ActiveLineIndex(lines, 5, -1))
	assert.Equal(t, 0, ActiveLineIndex(lines, 5, 0))
}

func TestActiveLineIndex_NoLines(t *testing.T) {
	assert.Equal(t, -1, ActiveLineIndex(nil, 10, -1))
}
