package xsink

import "errors"

// 包级别错误定义。
var (
	// ErrNilClient 表示传入了 nil 连接。
	ErrNilClient = errors.New("xsink: nil client")

	// ErrClosed 表示连接已关闭。
	ErrClosed = errors.New("xsink: connection closed")

	// ErrEmptyTable 表示表名为空。
	ErrEmptyTable = errors.New("xsink: empty table name")

	// ErrInvalidTableName 表示表名包含非法字符。
	ErrInvalidTableName = errors.New("xsink: invalid table name, contains illegal characters")

	// ErrEmptyRows 表示待插入数据为空。
	ErrEmptyRows = errors.New("xsink: empty rows")

	// ErrEmptyStatement 表示 DDL 语句为空。
	ErrEmptyStatement = errors.New("xsink: empty statement")

	// ErrNilDest 表示 Select 的目标为 nil。
	ErrNilDest = errors.New("xsink: nil destination")
)
