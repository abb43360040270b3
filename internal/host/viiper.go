package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/padlight/apiclient"
	"github.com/Alia5/padlight/device/keyboard"
)

// ViiperOptions selects the VIIPER server and the virtual keyboard.
type ViiperOptions struct {
	Addr     string
	Password string
	// BusID 0 picks the first existing bus, or creates bus 1.
	BusID       uint32
	IdVendor    *uint16
	IdProduct   *uint16
	DialTimeout time.Duration
}

// Viiper streams reports to a virtual keyboard on a VIIPER server.
type Viiper struct {
	client *apiclient.Client
	logger *slog.Logger

	busID      uint32
	devID      string
	createdBus bool

	mu     sync.Mutex
	stream *apiclient.DeviceStream
}

// OpenViiper attaches a keyboard device to the server and opens its stream.
func OpenViiper(ctx context.Context, opts ViiperOptions, logger *slog.Logger) (*Viiper, error) {
	cfg := &apiclient.Config{
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Password:     opts.Password,
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	v := &Viiper{client: apiclient.NewWithConfig(opts.Addr, cfg), logger: logger}

	ping, err := v.client.PingCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}
	logger.Info("connected to VIIPER", "addr", opts.Addr, "server", ping.Server, "version", ping.Version)

	if err := v.selectBus(ctx, opts.BusID); err != nil {
		return nil, err
	}
	stream, dev, err := v.client.AddDeviceAndConnect(ctx, v.busID, "keyboard",
		&apiclient.DeviceOptions{IdVendor: opts.IdVendor, IdProduct: opts.IdProduct})
	if dev != nil {
		v.devID = dev.DevId
	}
	if err != nil {
		_ = v.cleanup()
		return nil, fmt.Errorf("add keyboard: %w", err)
	}
	v.stream = stream
	logger.Info("virtual keyboard attached", "bus", v.busID, "device", v.devID, "vid", dev.Vid, "pid", dev.Pid)
	return v, nil
}

func (v *Viiper) selectBus(ctx context.Context, want uint32) error {
	buses, err := v.client.BusListCtx(ctx)
	if err != nil {
		return fmt.Errorf("list buses: %w", err)
	}
	switch {
	case want == 0 && len(buses.Buses) > 0:
		v.busID = buses.Buses[0]
		return nil
	case want != 0 && slices.Contains(buses.Buses, want):
		v.busID = want
		return nil
	case want == 0:
		want = 1
	}
	resp, err := v.client.BusCreateCtx(ctx, want)
	if err != nil {
		return fmt.Errorf("create bus %d: %w", want, err)
	}
	v.busID = resp.BusID
	v.createdBus = true
	return nil
}

// BusID returns the bus the keyboard is attached to.
func (v *Viiper) BusID() uint32 { return v.busID }

// DevID returns the device id of the keyboard.
func (v *Viiper) DevID() string { return v.devID }

// WriteReport sends st in the VIIPER keyboard format. A broken stream is
// dropped and reopened on the next write.
func (v *Viiper) WriteReport(st keyboard.InputState) ([]byte, error) {
	report, err := st.MarshalBinary()
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stream == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		stream, err := v.client.OpenStream(ctx, v.busID, v.devID)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("reopen stream: %w", err)
		}
		v.logger.Info("stream reopened", "bus", v.busID, "device", v.devID)
		v.stream = stream
	}
	if _, err := v.stream.Write(report); err != nil {
		_ = v.stream.Close()
		v.stream = nil
		return nil, fmt.Errorf("stream write: %w", err)
	}
	return report, nil
}

// Close closes the stream and removes the device, and the bus if it was
// created here.
func (v *Viiper) Close() error {
	v.mu.Lock()
	var errs []error
	if v.stream != nil {
		errs = append(errs, v.stream.Close())
		v.stream = nil
	}
	v.mu.Unlock()
	errs = append(errs, v.cleanup())
	return errors.Join(errs...)
}

func (v *Viiper) cleanup() error {
	var errs []error
	if v.devID != "" {
		if _, err := v.client.DeviceRemove(v.busID, v.devID); err != nil {
			errs = append(errs, fmt.Errorf("remove device: %w", err))
		}
		v.devID = ""
	}
	if v.createdBus {
		if _, err := v.client.BusRemove(v.busID); err != nil {
			errs = append(errs, fmt.Errorf("remove bus: %w", err))
		}
		v.createdBus = false
	}
	return errors.Join(errs...)
}
