package core

import "time"

// IDSource hands out strictly increasing identifiers seeded from the
// millisecond clock, so rapid successive adds within one millisecond
// still get distinct ids.
type IDSource struct {
	last int64
}

// Next returns an id greater than every id returned or observed so far.
func (s *IDSource) Next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe advances the source past id, e.g. after loading a collection.
func (s *IDSource) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
