package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	apiclient "github.com/Alia5/padlight/apiclient"
	apitypes "github.com/Alia5/padlight/apitypes"
	"github.com/Alia5/padlight/device/keyboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStreamNotSupportedWithMockTransport(t *testing.T) {
	c := testClient(map[string]string{}, nil)
	_, err := c.OpenStream(context.Background(), 1, "1")
	assert.ErrorContains(t, err, "not supported with mock transport")
}

func TestAddDeviceAndConnectErrors(t *testing.T) {
	tests := []struct {
		name          string
		responses     map[string]string
		inject        error
		wantDevice    bool
		wantErrSubstr string
	}{
		{
			name:          "device created then stream error",
			responses:     map[string]string{"bus/{id}/add": `{"busId":42,"devId":"7","vid":"0x1234","pid":"0xabcd","type":"keyboard"}`},
			wantDevice:    true,
			wantErrSubstr: "not supported with mock transport",
		},
		{name: "transport dial error", inject: errors.New("dial fail"), wantErrSubstr: "dial fail"},
		{name: "blank response error", wantErrSubstr: "empty response"},
		{
			name:          "api error response",
			responses:     map[string]string{"bus/{id}/add": `{"status":404,"title":"Not Found","detail":"bus 42 not found"}`},
			wantErrSubstr: "bus 42 not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := tt.responses
			if responses == nil {
				responses = map[string]string{}
			}
			stream, dev, err := testClient(responses, tt.inject).AddDeviceAndConnect(context.Background(), 42, "keyboard", nil)
			assert.Nil(t, stream)
			assert.ErrorContains(t, err, tt.wantErrSubstr)
			if tt.wantDevice {
				require.NotNil(t, dev)
				assert.Equal(t, apitypes.Device{BusID: 42, DevId: "7", Vid: "0x1234", Pid: "0xabcd", Type: "keyboard"}, *dev)
			} else {
				assert.Nil(t, dev)
			}
		})
	}
}

// fakeViiper answers device creation on bus 7 and collects the bytes written
// to the stream of device 1.
func fakeViiper(t *testing.T) (addr string, streamed <-chan []byte) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	ch := make(chan []byte, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			line, err := readRequest(conn)
			if err != nil {
				conn.Close()
				continue
			}
			switch {
			case strings.HasPrefix(line, "bus/7/add "):
				_, _ = conn.Write([]byte(`{"busId":7,"devId":"1","vid":"0x2e8a","pid":"0x0010","type":"keyboard"}` + "\n"))
				conn.Close()
			case line == "bus/7/1":
				_ = conn.SetReadDeadline(time.Time{})
				data, _ := io.ReadAll(conn)
				ch <- data
				conn.Close()
			default:
				conn.Close()
			}
		}
	}()
	return ln.Addr().String(), ch
}

func TestStreamWritesReports(t *testing.T) {
	addr, streamed := fakeViiper(t)
	c := apiclient.New(addr)

	stream, dev, err := c.AddDeviceAndConnect(context.Background(), 7, "keyboard", nil)
	require.NoError(t, err)
	assert.Equal(t, "1", dev.DevId)
	assert.Equal(t, uint32(7), stream.BusID)

	press := keyboard.Chord(keyboard.KeyLeftAlt, keyboard.Key3)
	require.NoError(t, stream.WriteBinary(&press))
	require.NoError(t, stream.WriteBinary(&keyboard.InputState{}))
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, err = stream.Write([]byte{1})
	assert.ErrorIs(t, err, apiclient.ErrStreamClosed)

	select {
	case data := <-streamed:
		assert.Equal(t, []byte{keyboard.ModLeftAlt, 1, keyboard.Key3, 0, 0}, data)
	case <-time.After(2 * time.Second):
		t.Fatal("stream data not received")
	}
}
