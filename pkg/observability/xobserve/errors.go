package xobserve

import "errors"

// 包级别错误定义。
var (
	// ErrNilSink 表示传入了 nil 信号存储。
	ErrNilSink = errors.New("xobserve: nil sink")

	// ErrRecorderClosed 表示记录器已关闭。
	ErrRecorderClosed = errors.New("xobserve: recorder closed")
)
