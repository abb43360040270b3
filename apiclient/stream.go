package apiclient

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	apitypes "github.com/Alia5/padlight/apitypes"
)

// ErrStreamClosed is returned by writes after Close.
var ErrStreamClosed = errors.New("stream closed")

// DeviceStream is the connection carrying input reports to one device.
type DeviceStream struct {
	BusID uint32
	DevID string

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// OpenStream connects to the stream channel of an existing device.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	// Stream connections live until Close.
	_ = conn.SetWriteDeadline(time.Time{})

	if _, err := fmt.Fprintf(conn, "bus/%d/%s\x00", busID, devID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID}, nil
}

// AddDeviceAndConnect creates a device and opens its stream. When the stream
// cannot be opened the created device is still returned.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, deviceType string, o *DeviceOptions) (*DeviceStream, *apitypes.Device, error) {
	resp, err := c.DeviceAddCtx(ctx, busID, deviceType, o)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.OpenStream(ctx, busID, resp.DevId)
	if err != nil {
		return nil, resp, err
	}
	return stream, resp, nil
}

// Write sends raw bytes to the device.
func (s *DeviceStream) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStreamClosed
	}
	return s.conn.Write(data)
}

// WriteBinary marshals v and sends it as one report.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.Write(data)
	return err
}

// SetWriteDeadline sets the write deadline for the underlying connection.
func (s *DeviceStream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// Close closes the stream. Repeated calls return nil.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
