package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/tarm/serial"
)

// maxSentences bounds how many NMEA lines are read while waiting for a valid fix.
const maxSentences = 200

// PortOpener opens the serial port a GPS device is attached to.
type PortOpener func(c *serial.Config) (io.ReadWriteCloser, error)

func openSerialPort(c *serial.Config) (io.ReadWriteCloser, error) {
	return serial.OpenPort(c)
}

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
	open     PortOpener
	now      func() time.Time
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return NewDeviceSensorProviderWithOpener(port, baudRate, openSerialPort)
}

// NewDeviceSensorProviderWithOpener is like NewDeviceSensorProvider but reads through the given opener.
func NewDeviceSensorProviderWithOpener(port string, baudRate int, open PortOpener) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		open:     open,
		now:      time.Now,
	}
}

// RequestPermission checks that the serial device can be opened by this process.
func (d *DeviceSensorProvider) RequestPermission(ctx context.Context) error {
	s, err := d.open(&serial.Config{Name: d.port, Baud: d.baudRate})
	if err != nil {
		return classifyOpenError(d.port, err)
	}
	return s.Close()
}

// GetCurrentLocation reads NMEA sentences until a valid GGA or RMC fix is found.
func (d *DeviceSensorProvider) GetCurrentLocation(ctx context.Context) (models.LocationSample, error) {
	s, err := d.open(&serial.Config{Name: d.port, Baud: d.baudRate})
	if err != nil {
		return models.LocationSample{}, classifyOpenError(d.port, err)
	}
	defer s.Close()

	type result struct {
		sample models.LocationSample
		err    error
	}
	done := make(chan result, 1)

	go func() {
		sample, err := d.readFix(s)
		done <- result{sample, err}
	}()

	select {
	case r := <-done:
		return r.sample, r.err
	case <-ctx.Done():
		// closing the port unblocks the reader goroutine
		s.Close()
		return models.LocationSample{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, ctx.Err())
	}
}

// Subscribe polls the GPS device at the requested interval.
func (d *DeviceSensorProvider) Subscribe(opts SubscribeOptions, onUpdate func(models.LocationSample), onError func(error)) (Subscription, error) {
	return NewPollingSubscription(opts, d.GetCurrentLocation, onUpdate, onError), nil
}

func (d *DeviceSensorProvider) readFix(r io.Reader) (models.LocationSample, error) {
	scanner := bufio.NewScanner(r)
	for read := 0; read < maxSentences && scanner.Scan(); read++ {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// partial lines are common right after the port opens
			continue
		}

		switch s := sentence.(type) {
		case nmea.GGA:
			if s.FixQuality == nmea.Invalid {
				continue
			}
			return models.LocationSample{
				Timestamp: d.now(),
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
				Accuracy:  float64(s.HDOP), // HDOP as a proxy for accuracy
			}, nil
		case nmea.RMC:
			if s.Validity != nmea.ValidRMC {
				continue
			}
			return models.LocationSample{
				Timestamp: d.now(),
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
			}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return models.LocationSample{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	return models.LocationSample{}, fmt.Errorf("%w: no valid GPS data found", ErrLocationUnavailable)
}

func classifyOpenError(port string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: cannot open %s: %v", ErrPermissionDenied, port, err)
	}
	return fmt.Errorf("%w: cannot open %s: %v", ErrLocationUnavailable, port, err)
}
