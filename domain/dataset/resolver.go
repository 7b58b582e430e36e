package dataset

import "regexp"

// clipNameRegex recovers the source episode ordinal from clip filenames
// produced by the clips command, e.g. "episode_012.mp4" -> 12.
var clipNameRegex = regexp.MustCompile(`episode_(\d+)`)

// ParseClipEpisodeIndex extracts the episode ordinal encoded in a clip name.
// Returns -1 when the name does not match the clip naming convention.
func ParseClipEpisodeIndex(clipName string) int64 {
	matches := clipNameRegex.FindStringSubmatch(clipName)
	if matches == nil {
		return -1
	}
	var idx int64
	for _, c := range matches[1] {
		idx = idx*10 + int64(c-'0')
	}
	return idx
}

// Resolve maps a request back to its originating source episode and computes
// per-camera absolute video windows.
//
// Request times are interpreted as relative to the original episode's start
// inside the source video: when the source metadata records a from_timestamp
// for a camera, the absolute window is that offset plus the request times.
// Missing information never fails resolution; the raw request times are kept
// and Degraded is set so the caller can surface the fallback.
func Resolve(req EpisodeRequest, newIndex int64, source []SourceEpisode, cameras []string) ResolvedEpisode {
	resolved := ResolvedEpisode{
		Request:       req,
		NewIndex:      newIndex,
		OriginalIndex: -1,
		VideoRanges:   make(map[string]TimeRange, len(cameras)),
	}

	if req.ClipName != "" {
		resolved.OriginalIndex = ParseClipEpisodeIndex(req.ClipName)
		if resolved.OriginalIndex < 0 {
			resolved.Degraded = true
		}
	}

	var orig *SourceEpisode
	if resolved.OriginalIndex >= 0 {
		for i := range source {
			if source[i].EpisodeIndex == resolved.OriginalIndex {
				orig = &source[i]
				break
			}
		}
	}

	for _, camera := range cameras {
		if orig != nil {
			if loc, ok := orig.Videos[camera]; ok {
				resolved.VideoRanges[camera] = req.Range.Shift(loc.FromTimestamp)
				continue
			}
		}
		// Best effort: without a recorded offset the request times are
		// assumed to already be absolute in the source video.
		resolved.VideoRanges[camera] = req.Range
		resolved.Degraded = true
	}

	return resolved
}
