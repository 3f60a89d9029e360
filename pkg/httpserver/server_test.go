package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	s := New(http.NotFoundHandler(),
		Addr("127.0.0.1", "8082"),
		Timeout(2*time.Second),
		IdleTimeout(time.Minute),
		ShutdownTimeout(time.Second),
	)

	assert.Equal(t, "127.0.0.1:8082", s.Addr())
	assert.Equal(t, 2*time.Second, s.server.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.server.WriteTimeout)
	assert.Equal(t, time.Minute, s.server.IdleTimeout)
	assert.Equal(t, time.Second, s.shutdownTimeout)
}

func TestShutdownClosesNotify(t *testing.T) {
	s := New(http.NotFoundHandler(), Addr("127.0.0.1", "0"))
	s.Start()

	require.Eventually(t, func() bool {
		return s.Shutdown() == nil
	}, time.Second, 10*time.Millisecond)

	select {
	case err, ok := <-s.Notify():
		assert.False(t, ok)
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("notify channel not closed")
	}
}
