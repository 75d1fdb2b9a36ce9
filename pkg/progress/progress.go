package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Reporter prints a single self-overwriting progress line. Way ids in OSM
// files are sorted, so the id of the current way divided by the expected
// maximum id approximates how much of the file has been read.
type Reporter struct {
	w        io.Writer
	maxWayID int64
	start    time.Time
	now      func() time.Time
}

// NewReporter creates a reporter writing to w. maxWayID may be zero, in
// which case no percentage or estimate is shown. The clock starts now, so
// create the reporter right before the first way is read.
func NewReporter(w io.Writer, maxWayID int64) *Reporter {
	return newReporter(w, maxWayID, time.Now)
}

func newReporter(w io.Writer, maxWayID int64, now func() time.Time) *Reporter {
	return &Reporter{w: w, maxWayID: maxWayID, start: now(), now: now}
}

// Observe matches the reader's observer signature.
func (r *Reporter) Observe(count, lastWay int64) {
	fmt.Fprintf(r.w, "\r%s   ", r.line(count, lastWay, r.now().Sub(r.start)))
}

func (r *Reporter) line(count, lastWay int64, elapsed time.Duration) string {
	ways := humanize.Comma(count) + " ways"
	if r.maxWayID <= 0 {
		return ways
	}

	pct := 100 * float64(lastWay) / float64(r.maxWayID)
	if pct > 100 {
		pct = 100
	}
	secs := elapsed.Seconds()
	if secs <= 0 || lastWay <= 0 {
		return fmt.Sprintf("%.2f%% (%s)", pct, ways)
	}

	// Ids advance at roughly lastWay/elapsed per second.
	remaining := float64(r.maxWayID-lastWay) / (float64(lastWay) / secs)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%.2f%% (%s, est. %d min)", pct, ways, int(remaining/60))
}

// Done overwrites the progress line with the final 100% marker.
func (r *Reporter) Done() {
	fmt.Fprintf(r.w, "\r%-30s\n", "100%")
}
