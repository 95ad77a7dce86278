// Package window maps batch positions to episode spans and to the slice of
// the primary source exposed to a generation request.
//
// The window starts at the share of the source proportional to production
// progress, (episode-1)/AssumedTotalEpisodes, minus a backtrack margin so
// consecutive windows overlap. Lengths are code points.
package window
