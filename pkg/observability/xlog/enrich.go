package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/sigflow/pkg/context/xcorr"
)

// ErrNilHandler 当 NewEnrichHandler 的 base handler 为 nil 时返回。
var ErrNilHandler = errors.New("xlog: base handler is nil")

// EnrichHandler 自动从 context 提取关联标识并注入日志。
//
// 装饰模式实现，包装底层 slog.Handler，在 Handle() 时追加
// trace_id 属性。Best-effort 策略：context 中没有关联标识时
// 不注入任何属性，日志照常记录。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler。
//
// 设计决策: 调用 WithGroup 后 trace_id 会被归入 group 下，
// 这是 slog handler 架构的固有限制。需要顶层 trace_id 时，
// 避免对带 enrich 的 logger 调用 WithGroup。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler。
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 在调用底层 handler 前，从 context 提取关联标识。
//
// 根据 slog 契约，必须 Clone record 后再修改，避免影响其他 handler。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := xcorr.FromContext(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(xcorr.KeyCorrelationID, id))
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler。
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler。
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
