package stress

import (
	"errors"
	"fmt"
	"time"
)

// Stack implementations Run can drive.
const (
	ImplLockFree = "lockfree"
	ImplMutex    = "mutex"
)

const maxTotal = 1 << 30 // producers*items upper bound

var (
	ErrConfig    = errors.New("stress: invalid config")
	ErrTimeout   = errors.New("stress: timed out")
	ErrDuplicate = errors.New("stress: value popped twice")
	ErrSum       = errors.New("stress: sum mismatch")
)

// Config describes one stress run.
type Config struct {
	Producers int           // goroutines pushing 0..Items-1 each
	Items     int           // values per producer
	Consumers int           // goroutines popping until every value is seen
	Impl      string        // ImplLockFree or ImplMutex
	Timeout   time.Duration // whole run deadline
	Output    string        // report target, see NewWriter
}

// DefaultConfig returns ten producers of 100 values and one consumer.
func DefaultConfig() Config {
	return Config{
		Producers: 10,
		Items:     100,
		Consumers: 1,
		Impl:      ImplLockFree,
		Timeout:   30 * time.Second,
		Output:    "default",
	}
}

func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers %d < 1", ErrConfig, c.Producers)
	case c.Items < 1:
		return fmt.Errorf("%w: items %d < 1", ErrConfig, c.Items)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers %d < 1", ErrConfig, c.Consumers)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout %s <= 0", ErrConfig, c.Timeout)
	case int64(c.Producers)*int64(c.Items) > maxTotal:
		return fmt.Errorf("%w: %d producers * %d items exceeds %d", ErrConfig, c.Producers, c.Items, maxTotal)
	}
	switch c.Impl {
	case ImplLockFree, ImplMutex:
	default:
		return fmt.Errorf("%w: unknown impl %q", ErrConfig, c.Impl)
	}
	return nil
}

// total is the number of values pushed in a run.
func (c Config) total() int {
	return c.Producers * c.Items
}

// want is the closed-form sum of every value pushed: Producers * sum(0..Items-1).
func (c Config) want() int64 {
	n := int64(c.Items)
	return int64(c.Producers) * n * (n - 1) / 2
}
