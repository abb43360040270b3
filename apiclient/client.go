// Package apiclient talks to a VIIPER server: it manages the virtual bus and
// the keyboard device padlight types into, and opens the device stream that
// carries input reports.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/Alia5/padlight/apitypes"
)

// DeviceOptions overrides the USB identity of a created device.
type DeviceOptions struct {
	IdVendor  *uint16
	IdProduct *uint16
}

// Client provides a high-level interface to the VIIPER API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a client for the TCP address (host:port) of the VIIPER API.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the VIIPER server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "ping", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// BusCreate creates a virtual USB bus with the given number.
func (c *Client) BusCreate(busID uint32) (*apitypes.BusCreateResponse, error) {
	return c.BusCreateCtx(context.Background(), busID)
}

func (c *Client) BusCreateCtx(ctx context.Context, busID uint32) (*apitypes.BusCreateResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/create", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusCreateResponse](raw)
}

// BusRemove removes a bus and every device attached to it.
func (c *Client) BusRemove(busID uint32) (*apitypes.BusRemoveResponse, error) {
	return c.BusRemoveCtx(context.Background(), busID)
}

func (c *Client) BusRemoveCtx(ctx context.Context, busID uint32) (*apitypes.BusRemoveResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/remove", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusRemoveResponse](raw)
}

// BusList retrieves all active bus numbers.
func (c *Client) BusList() (*apitypes.BusListResponse, error) {
	return c.BusListCtx(context.Background())
}

func (c *Client) BusListCtx(ctx context.Context) (*apitypes.BusListResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusListResponse](raw)
}

// DeviceAdd adds a device of devType ("keyboard") to the bus.
func (c *Client) DeviceAdd(busID uint32, devType string, o *DeviceOptions) (*apitypes.Device, error) {
	return c.DeviceAddCtx(context.Background(), busID, devType, o)
}

func (c *Client) DeviceAddCtx(ctx context.Context, busID uint32, devType string, o *DeviceOptions) (*apitypes.Device, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", busID)}
	if o == nil {
		o = &DeviceOptions{}
	}
	req := apitypes.DeviceCreateRequest{
		Type:      &devType,
		IdVendor:  o.IdVendor,
		IdProduct: o.IdProduct,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal device create request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, "bus/{id}/add", string(payload), pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.Device](raw)
}

// DeviceRemove removes device devID from the bus. Open streams to it are
// closed by the server.
func (c *Client) DeviceRemove(busID uint32, devID string) (*apitypes.DeviceRemoveResponse, error) {
	return c.DeviceRemoveCtx(context.Background(), busID, devID)
}

func (c *Client) DeviceRemoveCtx(ctx context.Context, busID uint32, devID string) (*apitypes.DeviceRemoveResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", busID)}
	raw, err := c.transport.DoCtx(ctx, "bus/{id}/remove", devID, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.DeviceRemoveResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
