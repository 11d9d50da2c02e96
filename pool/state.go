package pool

import "time"

// PoolState holds the two bounded collections and the cumulative counters.
// It is pure data; every read and write happens under the pool's lock.
type PoolState struct {
	// idleConnections is FIFO: index 0 holds the longest-idle connection
	// and is the next one handed out.
	idleConnections []*PooledConn

	// activeConnections is kept in checkout order so index 0 is always the
	// oldest checkout. Overdue reclamation targets index 0.
	activeConnections []*PooledConn

	requestCount                                int64
	accumulatedRequestTime                      int64
	accumulatedCheckoutTime                     int64
	claimedOverdueConnectionCount               int64
	accumulatedCheckoutTimeOfOverdueConnections int64
	hadToWaitCount                              int64
	accumulatedWaitTime                         int64
	badConnectionCount                          int64
}

// removeActive drops the given wrapper from the active list. Returning a
// wrapper that was already reclaimed is a no-op here.
func (s *PoolState) removeActive(conn *PooledConn) {
	for i, c := range s.activeConnections {
		if c == conn {
			s.activeConnections = append(s.activeConnections[:i], s.activeConnections[i+1:]...)
			return
		}
	}
}

// popIdle removes and returns the longest-idle connection, or nil.
func (s *PoolState) popIdle() *PooledConn {
	if len(s.idleConnections) == 0 {
		return nil
	}
	conn := s.idleConnections[0]
	s.idleConnections = s.idleConnections[1:]
	return conn
}

// Stats is a read-only snapshot of the pool counters plus derived averages.
type Stats struct {
	IdleCount   int `json:"idle_count"`
	ActiveCount int `json:"active_count"`

	RequestCount                  int64 `json:"request_count"`
	HadToWaitCount                int64 `json:"had_to_wait_count"`
	BadConnectionCount            int64 `json:"bad_connection_count"`
	ClaimedOverdueConnectionCount int64 `json:"claimed_overdue_connection_count"`

	AccumulatedRequestTime                      time.Duration `json:"accumulated_request_time"`
	AccumulatedCheckoutTime                     time.Duration `json:"accumulated_checkout_time"`
	AccumulatedCheckoutTimeOfOverdueConnections time.Duration `json:"accumulated_overdue_checkout_time"`
	AccumulatedWaitTime                         time.Duration `json:"accumulated_wait_time"`
}

// AverageRequestTime returns the mean time spent serving an acquisition.
func (s Stats) AverageRequestTime() time.Duration {
	if s.RequestCount == 0 {
		return 0
	}
	return s.AccumulatedRequestTime / time.Duration(s.RequestCount)
}

// AverageWaitTime returns the mean time callers spent parked on the pool.
func (s Stats) AverageWaitTime() time.Duration {
	if s.HadToWaitCount == 0 {
		return 0
	}
	return s.AccumulatedWaitTime / time.Duration(s.HadToWaitCount)
}

// AverageCheckoutTime returns the mean checkout duration per request.
func (s Stats) AverageCheckoutTime() time.Duration {
	if s.RequestCount == 0 {
		return 0
	}
	return s.AccumulatedCheckoutTime / time.Duration(s.RequestCount)
}

// AverageOverdueCheckoutTime returns the mean checkout duration of reclaimed
// overdue connections.
func (s Stats) AverageOverdueCheckoutTime() time.Duration {
	if s.ClaimedOverdueConnectionCount == 0 {
		return 0
	}
	return s.AccumulatedCheckoutTimeOfOverdueConnections / time.Duration(s.ClaimedOverdueConnectionCount)
}

func (s *PoolState) snapshot() Stats {
	return Stats{
		IdleCount:   len(s.idleConnections),
		ActiveCount: len(s.activeConnections),

		RequestCount:                  s.requestCount,
		HadToWaitCount:                s.hadToWaitCount,
		BadConnectionCount:            s.badConnectionCount,
		ClaimedOverdueConnectionCount: s.claimedOverdueConnectionCount,

		AccumulatedRequestTime:                      time.Duration(s.accumulatedRequestTime) * time.Millisecond,
		AccumulatedCheckoutTime:                     time.Duration(s.accumulatedCheckoutTime) * time.Millisecond,
		AccumulatedCheckoutTimeOfOverdueConnections: time.Duration(s.accumulatedCheckoutTimeOfOverdueConnections) * time.Millisecond,
		AccumulatedWaitTime:                         time.Duration(s.accumulatedWaitTime) * time.Millisecond,
	}
}
