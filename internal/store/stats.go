package store

import "context"

// LoadStats fetches the aggregate counts.
func (s *Store) LoadStats(ctx context.Context) error {
	stats, err := s.backend.GetStats(ctx)
	if err != nil {
		return s.fail(ctx, err, "Failed to load stats")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}
