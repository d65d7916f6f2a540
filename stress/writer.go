package stress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Writer delivers a run's report somewhere.
type Writer interface {
	Write(ctx context.Context, r *Report) error
	Close() error
}

const writeTimeout = 5 * time.Second

// WriteReport writes r under its own deadline, detached from the run's
// context, so the report of an interrupted run still reaches its sink.
func WriteReport(w Writer, r *Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return w.Write(ctx, r)
}

// NewWriter parses target, of the form <type>:<params>:
//
//	default                  text to stdout
//	file:<path>              one JSON object per line, appended to path
//	single:<addr>            hash in a single redis
//	cluster:<addr>,<addr>    hash in a redis cluster
func NewWriter(target string) (Writer, error) {
	var typ, params string
	pos := strings.Index(target, ":")
	if pos == -1 {
		typ = target
	} else {
		typ = target[:pos]
		params = target[pos+1:]
	}

	switch typ {
	case "", "default":
		return NewTextWriter(os.Stdout), nil
	case "file":
		if params == "" {
			return nil, fmt.Errorf("%w: no file name specified", ErrConfig)
		}
		f, err := os.OpenFile(params, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("stress: open report file: %w", err)
		}
		return &jsonWriter{w: f, c: f}, nil
	case "single":
		if params == "" {
			return nil, fmt.Errorf("%w: no address specified", ErrConfig)
		}
		return NewRedisWriter(redis.NewClient(&redis.Options{
			Addr:       params,
			MaxRetries: 3,
		})), nil
	case "cluster":
		if params == "" {
			return nil, fmt.Errorf("%w: no address specified", ErrConfig)
		}
		return NewRedisWriter(redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:      strings.Split(params, ","),
			MaxRetries: 3,
		})), nil
	}
	return nil, fmt.Errorf("%w: unknown output type %q", ErrConfig, typ)
}

type textWriter struct {
	w io.Writer
}

// NewTextWriter returns a Writer that prints a short human readable summary.
func NewTextWriter(w io.Writer) Writer {
	return &textWriter{w: w}
}

func (t *textWriter) Write(_ context.Context, r *Report) error {
	_, err := fmt.Fprintf(t.w,
		"impl=%s producers=%d consumers=%d items=%d\n"+
			"pushed=%d popped=%d sum=%d/%d empty=%t allocated=%d released=%d\n"+
			"elapsed=%s ops/s=%.0f\n"+
			"push p50=%s p90=%s p99=%s max=%s\n"+
			"pop  p50=%s p90=%s p99=%s max=%s\n",
		r.Impl, r.Producers, r.Consumers, r.Items,
		r.Pushed, r.Popped, r.Sum, r.Want, r.Empty, r.Allocated, r.Released,
		r.Elapsed, r.OpsPerSec,
		r.Push.P50, r.Push.P90, r.Push.P99, r.Push.Max,
		r.Pop.P50, r.Pop.P90, r.Pop.P99, r.Pop.Max)
	return err
}

func (t *textWriter) Close() error { return nil }

type jsonWriter struct {
	w io.Writer
	c io.Closer
}

func (j *jsonWriter) Write(_ context.Context, r *Report) error {
	return json.NewEncoder(j.w).Encode(r)
}

func (j *jsonWriter) Close() error {
	if j.c == nil {
		return nil
	}
	return j.c.Close()
}

const reportKeyPrefix = "lfstack:stress:"

type redisWriter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisWriter returns a Writer that stores each report as a hash under
// lfstack:stress:<impl>:<unix nanos>.
func NewRedisWriter(client redis.UniversalClient) Writer {
	return &redisWriter{client: client, now: time.Now}
}

func (w *redisWriter) key(r *Report) string {
	return fmt.Sprintf("%s%s:%d", reportKeyPrefix, r.Impl, w.now().UnixNano())
}

func (w *redisWriter) Write(ctx context.Context, r *Report) error {
	if err := w.client.HSet(ctx, w.key(r), r.Fields()).Err(); err != nil {
		return fmt.Errorf("stress: write report to redis: %w", err)
	}
	return nil
}

func (w *redisWriter) Close() error {
	return w.client.Close()
}
