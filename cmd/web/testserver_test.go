package main

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/e2etest"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// testLookupEnv configures the server for tests: dynamic ports, the fake
// model backend, and no portraits.
func testLookupEnv(key string) (string, bool) {
	switch key {
	case "GUMSHOE_ADDR":
		return "localhost:0", true
	case "GUMSHOE_PPROF_PORT":
		return ":0", true
	case "GUMSHOE_MODELS":
		return "fake:fake-1", true
	case "GUMSHOE_PORTRAITS":
		return "off", true
	default:
		return "", false
	}
}

// startTestServer starts the full application on a dynamic port and shuts
// it down when the test finishes.
func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return server
}
