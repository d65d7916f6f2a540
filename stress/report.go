package stress

import (
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatency = 1                  // ns
	maxLatency = int64(time.Minute) // ns
	sigFigs    = 3
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency, maxLatency, sigFigs)
}

// record clamps d into the histogram's range, so every sample is counted.
func record(h *hdrhistogram.Histogram, d time.Duration) {
	v := d.Nanoseconds()
	switch {
	case v < minLatency:
		v = minLatency
	case v > maxLatency:
		v = maxLatency
	}
	if err := h.RecordValue(v); err != nil {
		panic(fmt.Sprintf("stress: latency %d outside histogram range: %v", v, err))
	}
}

// Latency summarizes one operation's latency distribution.
type Latency struct {
	Count int64         `json:"count"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

func summarize(hs []*hdrhistogram.Histogram) Latency {
	all := newHistogram()
	for _, h := range hs {
		if h != nil {
			all.Merge(h)
		}
	}
	return Latency{
		Count: all.TotalCount(),
		P50:   time.Duration(all.ValueAtQuantile(50)),
		P90:   time.Duration(all.ValueAtQuantile(90)),
		P99:   time.Duration(all.ValueAtQuantile(99)),
		Max:   time.Duration(all.Max()),
	}
}

// Report is the outcome of one run.
type Report struct {
	Impl      string `json:"impl"`
	Producers int    `json:"producers"`
	Consumers int    `json:"consumers"`
	Items     int    `json:"items"`

	Pushed int64 `json:"pushed"`
	Popped int64 `json:"popped"`
	Sum    int64 `json:"sum"`
	Want   int64 `json:"want"`

	// Empty is the stack's emptiness check after every goroutine joined.
	Empty bool `json:"empty"`
	// Allocated is the lock-free stack's node count, zero for the mutex
	// stack. Released is what Close returned.
	Allocated int `json:"allocated"`
	Released  int `json:"released"`

	Elapsed   time.Duration `json:"elapsed"`
	OpsPerSec float64       `json:"ops_per_sec"`
	Push      Latency       `json:"push"`
	Pop       Latency       `json:"pop"`
}

// Fields flattens the report for logging and for hash sinks.
func (r *Report) Fields() map[string]interface{} {
	return map[string]interface{}{
		"impl":        r.Impl,
		"producers":   r.Producers,
		"consumers":   r.Consumers,
		"items":       r.Items,
		"pushed":      r.Pushed,
		"popped":      r.Popped,
		"sum":         r.Sum,
		"want":        r.Want,
		"empty":       r.Empty,
		"allocated":   r.Allocated,
		"released":    r.Released,
		"elapsed_ns":  r.Elapsed.Nanoseconds(),
		"ops_per_sec": r.OpsPerSec,
		"push_p50_ns": r.Push.P50.Nanoseconds(),
		"push_p99_ns": r.Push.P99.Nanoseconds(),
		"push_max_ns": r.Push.Max.Nanoseconds(),
		"pop_p50_ns":  r.Pop.P50.Nanoseconds(),
		"pop_p99_ns":  r.Pop.P99.Nanoseconds(),
		"pop_max_ns":  r.Pop.Max.Nanoseconds(),
	}
}
