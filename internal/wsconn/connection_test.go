package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnectAndClose(t *testing.T) {
	srv, url := newEchoServer(t)
	defer srv.Close()

	conn := NewConnection(ConnectionConfig{URL: url})
	require.NoError(t, conn.Connect(context.Background()))
	require.True(t, conn.IsConnected())

	require.NoError(t, conn.Close())
	assert.False(t, conn.IsConnected())
}

func TestCloseIsSafeFromConcurrentCallers(t *testing.T) {
	srv, url := newEchoServer(t)
	defer srv.Close()

	conn := NewConnection(ConnectionConfig{URL: url})
	require.NoError(t, conn.Connect(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.Close())
		}()
	}
	wg.Wait()
	assert.False(t, conn.IsConnected())
}

func TestCloseWithoutConnectReturnsPromptly(t *testing.T) {
	conn := NewConnection(ConnectionConfig{URL: "ws://127.0.0.1:0"})

	done := make(chan struct{})
	go func() {
		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closing an unconnected connection blocked")
	}
}

func TestSendRejectedWhenNotConnected(t *testing.T) {
	conn := NewConnection(ConnectionConfig{URL: "ws://127.0.0.1:0"})
	assert.Error(t, conn.Send([]byte(`{"T":"SUB_DATA"}`)))
}
