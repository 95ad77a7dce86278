package window

import (
	"fmt"

	"scriptforge/internal/textutil"
)

// Calculator positions the source window for a batch. AssumedTotalEpisodes is
// a fixed production-length guess; when it drifts from the real episode count
// the window drifts with it.
type Calculator struct {
	AssumedTotalEpisodes int
	WindowSize           int
	Backtrack            int
}

// Range is a half-open code point range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of code points covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Window returns the range of a source of sourceLen code points exposed to
// the batch whose first episode is episode. The result always satisfies
// 0 <= Start <= End <= sourceLen.
func (c Calculator) Window(sourceLen, episode int) Range {
	if sourceLen <= 0 {
		return Range{}
	}
	if episode < 1 {
		episode = 1
	}
	offset := 0
	if c.AssumedTotalEpisodes > 0 {
		offset = int(int64(sourceLen) * int64(episode-1) / int64(c.AssumedTotalEpisodes))
	}
	start := offset - max(c.Backtrack, 0)
	start = min(max(start, 0), sourceLen)
	end := min(start+max(c.WindowSize, 0), sourceLen)
	return Range{Start: start, End: end}
}

// Slice returns the windowed excerpt of source and the range it covers.
func (c Calculator) Slice(source string, episode int) (string, Range) {
	r := c.Window(textutil.RuneLen(source), episode)
	return textutil.SliceRunes(source, r.Start, r.End), r
}

// EpisodeRange is the inclusive episode span covered by one batch.
type EpisodeRange struct {
	First int
	Last  int
}

// ForBatch returns [(index-1)*width+1, index*width].
func ForBatch(index, width int) EpisodeRange {
	if width < 1 {
		width = 1
	}
	if index < 1 {
		index = 1
	}
	return EpisodeRange{First: (index-1)*width + 1, Last: index * width}
}

func (r EpisodeRange) String() string {
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}
