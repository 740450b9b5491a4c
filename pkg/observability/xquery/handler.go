package xquery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omeyang/sigflow/pkg/observability/xlog"
)

// URLParamTraceID 路由中关联标识参数名。
const URLParamTraceID = "trace_id"

// Handler 返回 GET /trace/{trace_id} 的 HTTP handler。
//
// 响应：
//   - 200 聚合结果（三类信号可能全为空切片）
//   - 400 关联标识不是合法 UUID
//   - 500 存储查询失败（细节只进日志，不回传客户端）
func Handler(svc *Service, logger xlog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = xlog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, URLParamTraceID)

		data, err := svc.TraceByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrInvalidTraceID) {
				http.Error(w, "invalid trace id", http.StatusBadRequest)
				return
			}
			logger.Error(ctx, "xquery: trace lookup failed", xlog.Err(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// 状态行已发出，只能记日志
			logger.Error(ctx, "xquery: encode response failed", xlog.Err(err))
		}
	}
}
