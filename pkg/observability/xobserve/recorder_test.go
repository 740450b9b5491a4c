package xobserve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/sigflow/pkg/observability/xsignal"
	"github.com/omeyang/sigflow/pkg/storage/xsink"
)

// fakeSink 记录所有 Insert 调用的 Sink 桩实现。
type fakeSink struct {
	mu      sync.Mutex
	inserts []fakeInsert
	err     error

	// block 非 nil 时 Insert 阻塞直到该 channel 关闭
	block chan struct{}
}

type fakeInsert struct {
	table string
	rows  []any
}

func (f *fakeSink) Client() driver.Conn { return nil }

func (f *fakeSink) Exec(context.Context, string) error { return nil }

func (f *fakeSink) Insert(_ context.Context, table string, rows []any) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserts = append(f.inserts, fakeInsert{table: table, rows: rows})
	return nil
}

func (f *fakeSink) Select(context.Context, any, string, ...any) error { return nil }

func (f *fakeSink) Health(context.Context) error { return nil }

func (f *fakeSink) WaitReady(context.Context) error { return nil }

func (f *fakeSink) Stats() xsink.Stats { return xsink.Stats{} }

func (f *fakeSink) Close() error { return nil }

func (f *fakeSink) snapshot() []fakeInsert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeInsert, len(f.inserts))
	copy(out, f.inserts)
	return out
}

func TestNewRecorder_NilSink(t *testing.T) {
	_, err := NewRecorder(nil)
	assert.ErrorIs(t, err, ErrNilSink)
}

func TestRecorder_SyncWrites(t *testing.T) {
	sink := &fakeSink{}
	rec, err := NewRecorder(sink, WithSync())
	require.NoError(t, err)
	defer rec.Close()

	ctx := context.Background()
	rec.Log(ctx, xsignal.LogRecord{TraceID: "t1", Message: "start"})
	rec.Metric(ctx, xsignal.MetricRecord{TraceID: "t1", MetricName: "m", Value: 1})
	rec.Trace(ctx, xsignal.TraceRecord{TraceID: "t1", SpanID: "s1"})

	inserts := sink.snapshot()
	require.Len(t, inserts, 3)
	assert.Equal(t, xsignal.TableLogs, inserts[0].table)
	assert.Equal(t, xsignal.TableMetrics, inserts[1].table)
	assert.Equal(t, xsignal.TableTraces, inserts[2].table)

	// 每条记录独立一行
	require.Len(t, inserts[0].rows, 1)
	logRow, ok := inserts[0].rows[0].(xsignal.LogRecord)
	require.True(t, ok)
	assert.Equal(t, "start", logRow.Message)
}

func TestRecorder_AsyncPreservesOrder(t *testing.T) {
	sink := &fakeSink{}
	rec, err := NewRecorder(sink, WithQueueSize(64))
	require.NoError(t, err)

	ctx := context.Background()
	rec.Log(ctx, xsignal.LogRecord{TraceID: "t1", Message: "first"})
	rec.Log(ctx, xsignal.LogRecord{TraceID: "t1", Message: "second"})
	rec.Log(ctx, xsignal.LogRecord{TraceID: "t1", Message: "third"})

	// Close 等待队列排空
	require.NoError(t, rec.Close())

	inserts := sink.snapshot()
	require.Len(t, inserts, 3)
	var msgs []string
	for _, in := range inserts {
		row, ok := in.rows[0].(xsignal.LogRecord)
		require.True(t, ok)
		msgs = append(msgs, row.Message)
	}
	assert.Equal(t, []string{"first", "second", "third"}, msgs)
}

func TestRecorder_QueueFullDrops(t *testing.T) {
	sink := &fakeSink{block: make(chan struct{})}
	rec, err := NewRecorder(sink, WithQueueSize(1), WithBreakerThreshold(0))
	require.NoError(t, err)

	sr, ok := rec.(*sinkRecorder)
	require.True(t, ok)

	ctx := context.Background()
	// worker 阻塞在第一条记录上，后续填满队列后开始丢弃
	for i := 0; i < 8; i++ {
		rec.Log(ctx, xsignal.LogRecord{Message: "spam"})
	}

	assert.Positive(t, sr.Dropped())

	close(sink.block)
	require.NoError(t, rec.Close())
}

func TestRecorder_WriteErrorDoesNotPropagate(t *testing.T) {
	sink := &fakeSink{err: errors.New("insert failed")}
	rec, err := NewRecorder(sink, WithSync())
	require.NoError(t, err)
	defer rec.Close()

	// 写入失败只进诊断日志，调用方无感知
	assert.NotPanics(t, func() {
		rec.Log(context.Background(), xsignal.LogRecord{Message: "doomed"})
	})
}

func TestRecorder_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	sink := &fakeSink{err: errors.New("clickhouse down")}
	rec, err := NewRecorder(sink,
		WithSync(),
		WithBreakerThreshold(2),
		WithBreakerCooldown(time.Minute))
	require.NoError(t, err)
	defer rec.Close()

	sr, ok := rec.(*sinkRecorder)
	require.True(t, ok)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec.Log(ctx, xsignal.LogRecord{Message: "unreachable"})
	}

	// 熔断后快速失败，不再触达存储
	assert.Equal(t, gobreakerStateOpen, sr.breaker.State().String())
}

// gobreaker 的 State 字符串表示
const gobreakerStateOpen = "open"

func TestRecorder_CloseTwice(t *testing.T) {
	rec, err := NewRecorder(&fakeSink{})
	require.NoError(t, err)

	require.NoError(t, rec.Close())
	assert.ErrorIs(t, rec.Close(), ErrRecorderClosed)
}

func TestRecorder_RecordAfterCloseDropped(t *testing.T) {
	sink := &fakeSink{}
	rec, err := NewRecorder(sink)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	sr, ok := rec.(*sinkRecorder)
	require.True(t, ok)

	assert.NotPanics(t, func() {
		rec.Log(context.Background(), xsignal.LogRecord{Message: "late"})
	})
	assert.Equal(t, int64(1), sr.Dropped())
	assert.Empty(t, sink.snapshot())
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	ctx := context.Background()
	rec.Log(ctx, xsignal.LogRecord{})
	rec.Metric(ctx, xsignal.MetricRecord{})
	rec.Trace(ctx, xsignal.TraceRecord{})
	assert.NoError(t, rec.Close())
}
