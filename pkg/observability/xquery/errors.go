package xquery

import "errors"

// 包级别错误定义。
var (
	// ErrNilSink 表示传入了 nil 信号存储。
	ErrNilSink = errors.New("xquery: nil sink")

	// ErrInvalidTraceID 表示关联标识不是合法的 UUID。
	ErrInvalidTraceID = errors.New("xquery: invalid trace id")
)
