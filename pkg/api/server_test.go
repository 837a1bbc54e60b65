package api

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	records := newFakeRecords()
	server := NewServer(records, ServerConfig{Port: 8080, APIKey: "test-key"}, NewMetrics())

	require.NotNil(t, server)
	assert.Equal(t, records, server.records)
	assert.Equal(t, "test-key", server.config.APIKey)
	assert.NotNil(t, server.logger)
}

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, newFakeRecords(), ServerConfig{Bind: "127.0.0.1", Port: 0, Logger: discardLogger})
	}()

	// Give the listener a moment before asking it to stop
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port

	err = StartServer(context.Background(), newFakeRecords(), ServerConfig{Bind: "127.0.0.1", Port: port, Logger: discardLogger})
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}

func TestServerFactory(t *testing.T) {
	starter := NewServerFactory().CreateServerStarter()
	require.NotNil(t, starter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An already cancelled context still binds, then shuts down right away
	err := starter.StartServer(ctx, newFakeRecords(), ServerConfig{Bind: "127.0.0.1", Port: 0, Logger: discardLogger})
	assert.NoError(t, err)
}
