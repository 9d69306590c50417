package main

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsConfigError(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "not-a-port")

	assert.Error(t, run())
}

func TestRun_ReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))

	assert.Error(t, run())
}

func TestParseAllowedOrigins(t *testing.T) {
	assert.Nil(t, parseAllowedOrigins(""))
	assert.Equal(t,
		[]string{"http://a.test", "http://b.test"},
		parseAllowedOrigins(" http://a.test, ,http://b.test "),
	)
}
