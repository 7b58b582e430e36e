package dataset

import "errors"

var (
	// ErrEmptySelection indicates a request matched zero table rows.
	ErrEmptySelection = errors.New("no frames match the requested time range")

	// ErrNoData indicates the source dataset has no table files.
	ErrNoData = errors.New("no data files found")

	// ErrNoEpisodes indicates that no requested episode survived slicing.
	ErrNoEpisodes = errors.New("no episodes were extracted")
)
