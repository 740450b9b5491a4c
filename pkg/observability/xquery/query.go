package xquery

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/sigflow/pkg/observability/xsignal"
	"github.com/omeyang/sigflow/pkg/storage/xsink"
)

// TraceData 一个关联标识下的全部信号。
//
// 三个切片各自按 timestamp 升序；没有匹配记录时为空切片而非 null。
type TraceData struct {
	TraceID string                 `json:"trace_id"`
	Metrics []xsignal.MetricRecord `json:"metrics"`
	Logs    []xsignal.LogRecord    `json:"logs"`
	Traces  []xsignal.TraceRecord  `json:"traces"`
}

// Service 信号关联查询服务。
type Service struct {
	sink xsink.Sink
}

// NewService 创建关联查询服务。
func NewService(sink xsink.Sink) (*Service, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	return &Service{sink: sink}, nil
}

// TraceByID 并行查询三张信号表并聚合。
//
// 任一查询失败则整体失败——宁可报错也不返回可能误导排障的
// 部分视图。id 必须是合法 UUID，否则返回 ErrInvalidTraceID。
func (s *Service) TraceByID(ctx context.Context, id string) (*TraceData, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTraceID, id)
	}

	data := &TraceData{
		TraceID: id,
		Metrics: []xsignal.MetricRecord{},
		Logs:    []xsignal.LogRecord{},
		Traces:  []xsignal.TraceRecord{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT * FROM %s WHERE trace_id = ? ORDER BY timestamp", xsignal.TableLogs)
		if err := s.sink.Select(gctx, &data.Logs, query, id); err != nil {
			return fmt.Errorf("xquery: query logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT * FROM %s WHERE trace_id = ? ORDER BY timestamp", xsignal.TableMetrics)
		if err := s.sink.Select(gctx, &data.Metrics, query, id); err != nil {
			return fmt.Errorf("xquery: query metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT * FROM %s WHERE trace_id = ? ORDER BY timestamp", xsignal.TableTraces)
		if err := s.sink.Select(gctx, &data.Traces, query, id); err != nil {
			return fmt.Errorf("xquery: query traces: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 表的 ORDER BY 已保证顺序；此处兜底，防止 Select 实现不保序
	sort.SliceStable(data.Logs, func(i, j int) bool {
		return data.Logs[i].Timestamp.Before(data.Logs[j].Timestamp)
	})
	sort.SliceStable(data.Metrics, func(i, j int) bool {
		return data.Metrics[i].Timestamp.Before(data.Metrics[j].Timestamp)
	})
	sort.SliceStable(data.Traces, func(i, j int) bool {
		return data.Traces[i].Timestamp.Before(data.Traces[j].Timestamp)
	})

	return data, nil
}
