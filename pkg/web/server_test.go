package web

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rtuslave/cmd/slave/config"
	"rtuslave/pkg/generic"
	"rtuslave/pkg/protocol/modbusrtu"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
)

func freePort(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return fmt.Sprintf("%d", ln.Addr().(*net.TCPAddr).Port)
}

func TestServerServeAndShutdown(t *testing.T) {
	slave, err := modbusrtu.NewSlave(modbusrtu.SlaveConfig{
		DeviceID:     0x01,
		BufferSize:   modbusrturuntime.DefaultBufferSize,
		MaxWait:      modbusrturuntime.DefaultMaxWait,
		PollInterval: time.Millisecond,
	}, modbusrtu.NewRegisterTable(modbusrturuntime.DefaultRegisters))
	require.NoError(t, err)

	port := freePort(t)
	server, err := NewServer(generic.Default(), port, &config.Config{Slave: slave})
	require.NoError(t, err)
	shutdown, err := server.Serve()
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/api/v1/registers/0", port))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"address":0,"value":4386}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	shutdown(ctx)

	_, err = http.Get(fmt.Sprintf("http://127.0.0.1:%s/api/v1/stats", port))
	assert.Error(t, err)
}

func TestNewServerRequiresPort(t *testing.T) {
	_, err := NewServer(generic.Default(), "", &config.Config{})
	assert.Error(t, err)
}
