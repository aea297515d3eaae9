package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/fibonacci"
	"github.com/agbru/fibapi/internal/service"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	engine := fibonacci.NewEngine(fibonacci.Options{})
	s := New(Config{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		Security:        DefaultSecurityConfig(),
	}, service.New(engine, nil), engine, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/fibonacci/10")
	if err != nil {
		cancel()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"value":55`) {
		t.Errorf("status = %d, body = %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after a clean shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServer_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	s := New(Config{ShutdownTimeout: 50 * time.Millisecond}, blockingAPI{started: started, release: release}, nil, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/fibonacci/1")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started
	cancel()

	select {
	case err := <-done:
		var timeoutErr apperrors.TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("expected TimeoutError, got %v", err)
		}
		if timeoutErr.Operation != "shutdown" {
			t.Errorf("Operation = %q", timeoutErr.Operation)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestServer_StartListenError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	s := New(Config{Addr: ln.Addr().String()}, blockingAPI{}, nil, nil)
	err = s.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to listen") {
		t.Errorf("expected a listen error, got %v", err)
	}
}

// blockingAPI holds GetValue until release is closed.
type blockingAPI struct {
	started chan struct{}
	release chan struct{}
}

func (b blockingAPI) GetValue(ctx context.Context, index int) (service.FibonacciResponse, int) {
	close(b.started)
	<-b.release
	return service.FibonacciResponse{Index: index}, http.StatusOK
}

func (b blockingAPI) GetNext(context.Context, int) (service.FibonacciResponse, int) {
	return service.FibonacciResponse{}, http.StatusOK
}

func (b blockingAPI) GetSequence(context.Context, int, int) (service.FibonacciSequenceResponse, int) {
	return service.FibonacciSequenceResponse{}, http.StatusOK
}
