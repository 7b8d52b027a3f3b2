package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BRIDGE_LOG_LEVEL", "error")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--ready-after", "10ms"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCallGetVersion(t *testing.T) {
	out, err := runCLI(t, "call", "getVersion")
	require.NoError(t, err)
	assert.Equal(t, `"1.2.3"`, strings.TrimSpace(out))
}

func TestCallWithParams(t *testing.T) {
	out, err := runCLI(t, "call", "say_hi", `{"msg":"hello"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reply":"python say: hello"}`, strings.TrimSpace(out))
}

func TestCallRepeatSharesConnection(t *testing.T) {
	out, err := runCLI(t, "call", "-n", "5", "add", `{"a":2,"b":3}`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Equal(t, "5", line)
	}
}

func TestCallDirect(t *testing.T) {
	out, err := runCLI(t, "call", "--direct", "getVersion")
	require.NoError(t, err)
	assert.Equal(t, `"1.2.3"`, strings.TrimSpace(out))
}

func TestCallRejectsBadParams(t *testing.T) {
	_, err := runCLI(t, "call", "say_hi", "{msg")
	assert.Error(t, err)
}

func TestListenPrintsBroadcasts(t *testing.T) {
	out, err := runCLI(t, "listen", "--count", "2", "--interval", "5ms", "--kind", "progress")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "progress "))
	assert.Contains(t, lines[1], `"seq":2`)
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("BRIDGE_POLL_MAX_ATTEMPTS", "0")
	_, err := runCLI(t, "call", "getVersion")
	assert.Error(t, err)
}

func TestListenRejectsBadFlags(t *testing.T) {
	_, err := runCLI(t, "listen", "--interval", "0s")
	assert.ErrorContains(t, err, "interval must be positive")

	_, err = runCLI(t, "listen", "--count", "-1")
	assert.ErrorContains(t, err, "count must not be negative")
}
