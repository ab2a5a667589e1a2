package cache

import "time"

// StatsSnapshot is a point-in-time view over live (non-expired) entries.
// Hit/miss counters are cumulative for the lifetime of the store (or
// since the last ResetCounters call).
type StatsSnapshot struct {
	// TotalEntries counts live entries.
	TotalEntries int `json:"total_entries"`

	// TotalSizeBytes sums the serialized size of live entries.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// Hits and Misses are the cumulative read counters.
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`

	// HitRate is Hits/(Hits+Misses) in [0,1]; 0 when no reads happened.
	HitRate float64 `json:"hit_rate"`

	// AvgAccessCount is the mean access count over live entries.
	AvgAccessCount float64 `json:"avg_access_count"`

	// TagCounts maps a tag to the number of live entries carrying it.
	TagCounts map[string]int `json:"tag_counts"`

	// TakenAt is when the snapshot was computed.
	TakenAt time.Time `json:"taken_at"`
}

// hitRate guards the zero-read case.
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
