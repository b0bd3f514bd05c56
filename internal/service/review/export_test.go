package review

import "time"

// SetNowForTest swaps the service's clock so tests get deterministic
// scheduling. Only compiled into the test binary.
func SetNowForTest(svc ReviewService, now func() time.Time) {
	svc.(*reviewServiceImpl).now = now
}
