// Package xrotate 提供日志文件轮转能力，作为 xlog 的输出目标。
//
// 基于 lumberjack 实现按大小轮转、备份数量与天数清理、可选 gzip 压缩。
package xrotate

import (
	"errors"
	"io"
)

// 配置校验错误。
var (
	// ErrEmptyFilename 文件名为空。
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize MaxSizeMB 值无效。
	ErrInvalidMaxSize = errors.New("xrotate: invalid MaxSizeMB")

	// ErrNoCleanupPolicy MaxBackups 和 MaxAgeDays 不能同时为 0。
	ErrNoCleanupPolicy = errors.New("xrotate: no cleanup policy configured")

	// ErrClosed 轮转器已关闭。
	ErrClosed = errors.New("xrotate: rotator is closed")
)

// 编译时断言：Rotator 是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口。
//
// 隐式实现 [io.WriteCloser]，可直接作为 xlog 的输出目标。
// 所有实现都必须是并发安全的；Close 后调用 Write 或 Rotate
// 返回 [ErrClosed]。
type Rotator interface {
	// Write 写入日志数据，触发轮转条件时自动轮转。
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器，释放资源。重复调用返回 [ErrClosed]。
	Close() error

	// Rotate 手动触发日志轮转。
	Rotate() error
}
