package linduino

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate the Linduino sketches open the USB UART with.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to a Linduino streaming LTC2508 records.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	records   chan RawRecord
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		records:   make(chan RawRecord, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading records.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	// A closed device starts over with a fresh context and records channel.
	if d.ctx.Err() != nil {
		d.ctx, d.cancel = context.WithCancel(context.Background())
		d.records = make(chan RawRecord, d.bufSize)
	}

	d.conn = port
	d.connected = true
	d.done = make(chan struct{})

	ctx, records, done := d.ctx, d.records, d.done
	go func() {
		defer close(done)
		scanRecords(ctx, port, records, time.Now)
	}()

	return nil
}

// Close closes the connection and stops reading records.
// The records channel is closed once the reader goroutine has exited.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			logrus.WithError(err).WithField("port", d.port).Warn("error closing serial port")
		}
		d.conn = nil
	}

	<-d.done
	d.connected = false
	close(d.records)

	return nil
}

// Records returns the channel of received lines. A new channel is created
// when the device is connected again after Close.
func (d *Serial) Records() <-chan RawRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// scanRecords reads lines from r until EOF, a read error, or ctx is done.
// Blank and over-long lines are dropped and lines are sent without surrounding whitespace.
// When out is full the record is dropped rather than stalling the port.
func scanRecords(ctx context.Context, r io.Reader, out chan<- RawRecord, now func() time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.WithField("panic", rec).Error("panic in record reader")
		}
	}()

	lines := NewLineReader(r)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		text, truncated, err := lines.Next()
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				logrus.WithError(err).Error("error reading from serial port")
			}
			return
		}
		if truncated {
			logrus.WithField("max_length", MaxLineLength).Warn("dropping over-long line")
			continue
		}

		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}

		record := RawRecord{Timestamp: now(), Line: line}
		select {
		case out <- record:
		case <-ctx.Done():
			return
		default:
			logrus.WithField("line", line).Warn("records channel full, dropping record")
		}
	}
}
