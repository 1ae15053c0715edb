// Package segments holds the validation and normalization rules for a
// video's timed-text set. Persistence lives in internal/database; the
// rules here are pure so they can be exercised without a store.
package segments

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Sorted returns a copy of segs ordered by start time ascending.
func Sorted(segs []models.Segment) []models.Segment {
	out := make([]models.Segment, len(segs))
	copy(out, segs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Validate checks a submitted segment set against the store's
// integrity rules: per-row bounds, unique local ids, and pairwise
// disjointness. Overlap is a Conflict; everything else is Invalid.
func Validate(segs []models.Segment) error {
	seen := make(map[int]struct{}, len(segs))
	for _, s := range segs {
		if s.Start < 0 {
			return fault.Invalid("segment %d: start %v is negative", s.ID, s.Start)
		}
		if s.End <= s.Start {
			return fault.Invalid("segment %d: end %v is not after start %v", s.ID, s.End, s.Start)
		}
		if utf8.RuneCountInString(s.Text) > models.MaxSegmentTextLen {
			return fault.Invalid("segment %d: text exceeds %d chars", s.ID, models.MaxSegmentTextLen)
		}
		if _, dup := seen[s.ID]; dup {
			return fault.Invalid("segment id %d appears twice", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	ordered := Sorted(segs)
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Start < ordered[i-1].End {
			return fmt.Errorf("%w: segments %d and %d overlap", fault.ErrConflict, ordered[i-1].ID, ordered[i].ID)
		}
	}
	return nil
}

// FromTranscription normalizes the raw output of the speech-to-text
// service into a storable set: sorted, ids renumbered 0..N-1, text
// truncated, degenerate rows dropped, and overlaps fixed by clipping
// each end to the next start.
func FromTranscription(raw []models.Segment) []models.Segment {
	ordered := Sorted(raw)
	kept := ordered[:0]
	for _, s := range ordered {
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End <= s.Start {
			continue
		}
		if utf8.RuneCountInString(s.Text) > models.MaxSegmentTextLen {
			s.Text = string([]rune(s.Text)[:models.MaxSegmentTextLen])
		}
		kept = append(kept, s)
	}
	out := make([]models.Segment, 0, len(kept))
	for i, s := range kept {
		if i+1 < len(kept) && s.End > kept[i+1].Start {
			s.End = kept[i+1].Start
		}
		if s.End <= s.Start {
			continue
		}
		out = append(out, s)
	}
	for i := range out {
		out[i].ID = i
	}
	return out
}
