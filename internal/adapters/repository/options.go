package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithTopCacheSize sets how many leading entries each snapshot precomputes.
func WithTopCacheSize(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}
