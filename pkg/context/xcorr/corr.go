package xcorr

import (
	"context"

	"github.com/google/uuid"
)

// contextKey context key 的私有类型，避免与其他包冲突。
type contextKey string

const keyCorrelationID = contextKey("xcorr:correlation_id")

// KeyCorrelationID 日志属性 key，遵循下划线分隔约定。
const KeyCorrelationID = "trace_id"

// =============================================================================
// 标识生成
// =============================================================================

// NewID 生成新的关联标识。
//
// 格式为 UUID v4 文本（128-bit 随机数），如
// "550e8400-e29b-41d4-a716-446655440000"。
// 使用 crypto/rand 熵源，进程生命周期内以压倒性概率唯一。
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// Context 操作
// =============================================================================

// WithID 将关联标识注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithID(ctx context.Context, id string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyCorrelationID, id), nil
}

// FromContext 从 context 提取关联标识，不存在返回空字符串。
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyCorrelationID).(string); ok {
		return v
	}
	return ""
}

// Ensure 确保 context 中存在关联标识。
//
// 语义：有则沿用（不验证、不纠正），无则生成并注入。
// 适用于请求入口，保证标识在任何下游处理之前分配、且只分配一次。
// 如果 ctx 为 nil，返回 ErrNilContext。
func Ensure(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if FromContext(ctx) != "" {
		return ctx, nil
	}
	return WithID(ctx, NewID())
}

// Require 从 context 获取关联标识，不存在则返回错误。
//
// 语义：值必须存在，缺失时返回 ErrMissingID。
// 如果 ctx 为 nil，返回 ErrNilContext。
func Require(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := FromContext(ctx)
	if v == "" {
		return "", ErrMissingID
	}
	return v, nil
}
