package xrun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewGroup_NilContext(t *testing.T) {
	g, ctx := NewGroup(nil) //nolint:staticcheck // 验证 nil context 归一化
	require.NotNil(t, g)
	require.NotNil(t, ctx)
	require.NoError(t, g.Wait())
}

func TestGroup_ErrorPropagation(t *testing.T) {
	g, ctx := NewGroup(context.Background())

	boom := errors.New("boom")
	g.Go(func(ctx context.Context) error {
		return boom
	})
	g.Go(func(ctx context.Context) error {
		// 其他服务应收到取消信号
		<-ctx.Done()
		return nil
	})

	err := g.Wait()
	assert.ErrorIs(t, err, boom)
	assert.Error(t, ctx.Err())
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_CancelCause(t *testing.T) {
	g, _ := NewGroup(context.Background())

	cause := errors.New("maintenance window")
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		g.Cancel(cause)
	}()

	assert.ErrorIs(t, g.Wait(), cause)
}

func TestGroup_PlainCancelReturnsNil(t *testing.T) {
	g, _ := NewGroup(context.Background())

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		g.Cancel(nil)
	}()

	// 没有显式 cause 的主动取消视为正常退出
	assert.NoError(t, g.Wait())
}

func TestGroup_GoWithName(t *testing.T) {
	g, _ := NewGroup(context.Background(), WithName("test-group"))

	done := make(chan struct{})
	g.GoWithName("worker", func(ctx context.Context) error {
		close(done)
		return nil
	})

	require.NoError(t, g.Wait())
	select {
	case <-done:
	default:
		t.Fatal("service never ran")
	}
}

func TestRun_SignalExit(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigCh)

	go func() {
		time.Sleep(10 * time.Millisecond)
		sigCh <- syscall.SIGTERM
	}()

	err := Run(ctx, WaitForDone())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignal)

	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
}

func TestRun_ServiceError(t *testing.T) {
	boom := errors.New("startup failed")
	err := Run(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunWithOptions_WithoutSignalHandler(t *testing.T) {
	err := RunWithOptions(context.Background(),
		[]Option{WithoutSignalHandler()},
		func(ctx context.Context) error {
			return nil
		})
	assert.NoError(t, err)
}

func TestSignalError(t *testing.T) {
	err := &SignalError{Signal: syscall.SIGINT}
	assert.Equal(t, "received signal interrupt", err.Error())
	assert.ErrorIs(t, err, ErrSignal)

	assert.Equal(t, "received signal <nil>", (&SignalError{}).Error())
}

// ----------------------------------------------------------------------------
// HTTPServer
// ----------------------------------------------------------------------------

func TestHTTPServer_NilServer(t *testing.T) {
	fn := HTTPServer(nil, time.Second)
	assert.ErrorIs(t, fn(context.Background()), ErrNilServer)
}

func TestHTTPServer_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpServe(ctx, srv, ln, 2*time.Second)
	}()

	// 确认服务器可用后触发关闭
	resp, err := http.Get(fmt.Sprintf("http://%s/", ln.Addr()))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// 关闭空闲连接，避免 keep-alive goroutine 影响泄漏检测
	http.DefaultClient.CloseIdleConnections()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// 端口已被占用
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		ReadHeaderTimeout: time.Second,
	}
	fn := HTTPServer(srv, time.Second)
	assert.Error(t, fn(context.Background()))
}

type mockServer struct {
	listenErr   error
	shutdownErr error
	shutdown    chan struct{}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.shutdown
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	close(m.shutdown)
	return m.shutdownErr
}

func TestHTTPServer_ShutdownError(t *testing.T) {
	shutdownErr := errors.New("shutdown failed")
	srv := &mockServer{shutdownErr: shutdownErr, shutdown: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- HTTPServer(srv, time.Second)(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, shutdownErr)
	case <-time.After(2 * time.Second):
		t.Fatal("server func did not return")
	}
}

func TestWaitForDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitForDone()(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// httpServe 将既有 listener 注入 http.Server，复用 HTTPServer 的关闭逻辑。
func httpServe(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	return HTTPServer(&listenerServer{srv: srv, ln: ln}, timeout)(ctx)
}

type listenerServer struct {
	srv *http.Server
	ln  net.Listener
}

func (s *listenerServer) ListenAndServe() error {
	return s.srv.Serve(s.ln)
}

func (s *listenerServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
