package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	t.Cleanup(func() { version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit })

	version = "1.2.3"
	buildTime = "2025-01-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	for _, want := range []string{
		"MCP PDF Forms",
		"Version: 1.2.3",
		"Build Time: 2025-01-01_10:30:00",
		"Git Commit: abc123",
		"Built with: go",
	} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestRun_Version(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), "mcp-pdf-forms", []string{"--version"}, &buf))
	assert.Contains(t, buf.String(), "MCP PDF Forms")
}

func TestRun_InvalidConfig(t *testing.T) {
	err := run(context.Background(), "mcp-pdf-forms", []string{"--dir=" + t.TempDir(), "--mode=bogus"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRun_ServerMode(t *testing.T) {
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, "mcp-pdf-forms", []string{
			"--mode=server",
			"--host=127.0.0.1",
			fmt.Sprintf("--port=%d", port),
			"--dir=" + t.TempDir(),
			"--log-level=error",
		}, &bytes.Buffer{})
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
