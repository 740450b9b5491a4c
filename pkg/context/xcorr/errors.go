package xcorr

import "errors"

// 包级别错误定义。
var (
	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xcorr: nil context")

	// ErrMissingID 表示 context 中不存在关联标识。
	ErrMissingID = errors.New("xcorr: missing correlation id")
)
