package dataset

// SliceResult is the renumbered subset of table rows for one output episode.
type SliceResult struct {
	Frames []FrameRecord

	// UsedFallback is true when the rows were selected by timestamp alone
	// because the request could not be matched to a source episode.
	UsedFallback bool
}

// Slice selects the table rows matching a resolved episode, renumbers them
// and rebases their timestamps to start at 0.
//
// The primary filter matches rows of the original episode whose timestamp
// lies in the requested half-open range. Without a known original episode the
// filter degrades to timestamp alone, which is unreliable when several source
// episodes cover the same time window.
//
// nextIndex is the global row ordinal to assign to the first selected row.
// TaskIndex is left zero; the caller stamps it once the task is registered,
// which must not happen for an empty selection. Returns ErrEmptySelection
// when no row matches.
func Slice(frames []FrameRecord, resolved ResolvedEpisode, nextIndex int64) (*SliceResult, error) {
	r := resolved.Request.Range
	byEpisode := resolved.HasOriginal()

	var selected []FrameRecord
	for _, f := range frames {
		if byEpisode && f.EpisodeIndex != resolved.OriginalIndex {
			continue
		}
		if !r.Contains(f.Timestamp) {
			continue
		}
		selected = append(selected, f)
	}
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	base := selected[0].Timestamp
	for _, f := range selected[1:] {
		if f.Timestamp < base {
			base = f.Timestamp
		}
	}

	out := make([]FrameRecord, len(selected))
	for i, f := range selected {
		payload := make(map[string]any, len(f.Payload))
		for k, v := range f.Payload {
			payload[k] = v
		}
		out[i] = FrameRecord{
			EpisodeIndex: resolved.NewIndex,
			FrameIndex:   int64(i),
			Timestamp:    f.Timestamp - base,
			Index:        nextIndex + int64(i),
			Payload:      payload,
		}
	}

	return &SliceResult{Frames: out, UsedFallback: !byEpisode}, nil
}
