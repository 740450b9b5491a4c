package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omeyang/sigflow/pkg/context/xcorr"
	"github.com/omeyang/sigflow/pkg/observability/xlog"
	"github.com/omeyang/sigflow/pkg/observability/xmetric"
	"github.com/omeyang/sigflow/pkg/observability/xobserve"
	"github.com/omeyang/sigflow/pkg/observability/xquery"
	"github.com/omeyang/sigflow/pkg/observability/xsignal"
)

// 演示端点的模拟业务耗时。
const (
	userLookupDelay  = 100 * time.Millisecond
	searchQueryDelay = 200 * time.Millisecond
)

// demoHandlers 是演示业务端点的处理器集合。
//
// 除拦截器自动写入的生命周期记录外，业务处理器还通过 rec
// 写入与请求共享关联标识的业务日志行。
type demoHandlers struct {
	rec     xobserve.Recorder
	service string
}

// newRouter 组装完整路由：观测拦截器 + 演示业务端点 + 观测出口。
func newRouter(rec xobserve.Recorder, reg *xmetric.Registry, svc *xquery.Service, logger xlog.Logger, serviceName string) chi.Router {
	r := chi.NewRouter()
	r.Use(xobserve.Middleware(rec, reg, xobserve.WithServiceName(serviceName)))

	h := &demoHandlers{rec: rec, service: serviceName}
	r.Get("/", h.root)
	r.Get("/users/{user_id}", h.getUser)
	r.Get("/search", h.search)

	// 观测出口：指标拉取 + 关联查询
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}
	if svc != nil {
		r.Get("/trace/{trace_id}", xquery.Handler(svc, logger))
	}

	return r
}

func (h *demoHandlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Hello, Observability!",
		"trace_id": xcorr.FromContext(r.Context()),
	})
}

func (h *demoHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "user_id must be an integer",
		})
		return
	}

	time.Sleep(userLookupDelay)

	ctx := r.Context()
	h.rec.Log(ctx, xsignal.LogRecord{
		Timestamp: time.Now(),
		TraceID:   xcorr.FromContext(ctx),
		Level:     string(xsignal.LevelInfo),
		Message:   fmt.Sprintf("Fetching user %d", userID),
		Service:   h.service,
		Extra:     xsignal.KV{"user_id": userID}.Text(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"name":     fmt.Sprintf("User %d", userID),
		"trace_id": xcorr.FromContext(ctx),
	})
}

func (h *demoHandlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	time.Sleep(searchQueryDelay)

	ctx := r.Context()
	h.rec.Log(ctx, xsignal.LogRecord{
		Timestamp: time.Now(),
		TraceID:   xcorr.FromContext(ctx),
		Level:     string(xsignal.LevelInfo),
		Message:   "Searching for: " + q,
		Service:   h.service,
		Extra:     xsignal.KV{"query": q}.Text(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"results": []string{
			fmt.Sprintf("Result 1 for %s", q),
			fmt.Sprintf("Result 2 for %s", q),
		},
		"trace_id": xcorr.FromContext(ctx),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// 编码失败时状态行已发出，无法补救，错误静默
	_ = json.NewEncoder(w).Encode(body)
}
