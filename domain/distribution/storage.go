package distribution

// StorageInfo is a snapshot of the Drive account's storage quota, checked
// before a dataset archive upload starts.
type StorageInfo struct {
	TotalBytes     int64
	UsedBytes      int64
	AvailableBytes int64
}

// HasSpaceFor reports whether an upload of the given size would fit.
func (s StorageInfo) HasSpaceFor(bytes int64) bool {
	return s.AvailableBytes >= bytes
}

// AvailableMB returns the free space in megabytes, for operator-facing
// messages.
func (s StorageInfo) AvailableMB() float64 {
	return float64(s.AvailableBytes) / 1024 / 1024
}
