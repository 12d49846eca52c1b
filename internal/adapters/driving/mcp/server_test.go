package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresFacade(t *testing.T) {
	for _, ports := range []*Ports{nil, {}} {
		server, err := NewServer(ports)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingFacade)
		assert.Nil(t, server)
	}
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(&Ports{Facade: &mockFacade{}})

	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NotNil(t, server.Handler())
	assert.NotNil(t, server.now)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Facade: &mockFacade{}})
	require.NoError(t, err)

	// Reserve a free port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, addr) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports

	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingFacade)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingFacade)
	assert.NoError(t, (&Ports{Facade: &mockFacade{}}).Validate())
}
