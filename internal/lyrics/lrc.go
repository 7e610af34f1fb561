// Package lyrics parses synchronized-lyrics (LRC) text and maps playback
// positions to the active line.
package lyrics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/molebeat/molebeat/internal/domain"
)

// timeTag matches one LRC timestamp of the form [MM:SS.ff] or [MM:SS.fff].
var timeTag = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

// ParseLRC parses an LRC blob into timed lines.
//
// Each line carrying a timestamp tag contributes one entry whose time is
// minutes*60 + seconds + fraction/100; the text after stripping the tag is
// the line content. Lines with empty text are dropped and lines without a
// recognizable tag are skipped. Timestamps are not required to be sorted;
// the active-line scan tolerates out-of-order input.
func ParseLRC(raw string) []domain.LyricLine {
	if raw == "" {
		return nil
	}

	var lines []domain.LyricLine
	for _, line := range strings.Split(raw, "\n") {
		match := timeTag.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		minutes, _ := strconv.Atoi(match[1])
		seconds, _ := strconv.Atoi(match[2])
		fraction, _ := strconv.Atoi(match[3])

		text := strings.TrimSpace(timeTag.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}

		lines = append(lines, domain.LyricLine{
			Time: float64(minutes)*60 + float64(seconds) + float64(fraction)/100,
			Text: text,
		})
	}

	return lines
}

// ActiveLineIndex selects the line i with time(i) <= position < time(i+1),
// the final line being open-ended. When no line matches (position before the
// first timestamp, or no lines at all) the previous index is kept, so a
// highlighted line never flickers off between updates.
func ActiveLineIndex(lines []domain.LyricLine, position float64, previous int) int {
	for i, line := range lines {
		if position < line.Time {
			continue
		}
		if i+1 >= len(lines) || position < lines[i+1].Time {
			return i
		}
	}
	return previous
}
