package xsink

// Stats 信号存储客户端统计信息。
type Stats struct {
	// InsertCount 批量插入总次数。
	InsertCount int64

	// InsertErrors 批量插入失败次数。
	InsertErrors int64

	// QueryCount 查询（含 DDL）总次数。
	QueryCount int64

	// QueryErrors 查询失败次数。
	QueryErrors int64

	// PingCount 健康检查总次数。
	PingCount int64

	// PingErrors 健康检查失败次数。
	PingErrors int64

	// Pool 连接池状态。
	Pool PoolStats
}

// PoolStats 连接池统计信息。
type PoolStats struct {
	// Open 已打开的连接数。
	Open int

	// Idle 空闲连接数。
	Idle int

	// InUse 使用中的连接数。
	InUse int
}
