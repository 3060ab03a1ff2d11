package linduino

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/itohio/golinduino/pkg/config"
)

// Mock simulates a DC2222 demo board streaming LTC2508 records.
type Mock struct {
	cfg  *config.MockConfig
	vref float64

	records   chan RawRecord
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}

	// Simulation state
	n int // Records generated so far
}

// NewMock creates a new simulated board. vref is the reference the board's
// codes are scaled against.
func NewMock(cfg *config.MockConfig, vref float64) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if vref <= 0 {
		vref = config.Default().Decoder.VRef
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		vref:      vref,
		records:   make(chan RawRecord, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect starts generating records.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	if m.ctx.Err() != nil {
		m.ctx, m.cancel = context.WithCancel(context.Background())
		m.records = make(chan RawRecord, DefaultBufferSize)
	}

	m.connected = true
	m.n = 0
	m.done = make(chan struct{})

	ctx, records, done := m.ctx, m.records, m.done
	go func() {
		defer close(done)
		m.generateRecords(ctx, records)
	}()

	return nil
}

// Close stops the simulated board and closes the records channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	done, records := m.done, m.records
	m.connected = false
	m.mu.Unlock()

	<-done
	close(records)

	return nil
}

// Records returns the channel of generated lines. A new channel is created
// when the board is connected again after Close.
func (m *Mock) Records() <-chan RawRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateRecords emits one record per tick until the context is cancelled.
func (m *Mock) generateRecords(ctx context.Context, records chan<- RawRecord) {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			record := RawRecord{Timestamp: now, Line: m.nextLine()}
			select {
			case records <- record:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// nextLine produces the next record of the simulated waveform.
func (m *Mock) nextLine() string {
	m.mu.Lock()
	n := m.n
	m.n++
	m.mu.Unlock()

	return FormatRecord(VoltageToCode(m.voltageAt(n), m.vref), m.cfg.Status)
}

// voltageAt returns the simulated input voltage for record n:
// offset + amplitude*sin(2*pi*f*t) plus a small deterministic ripple.
func (m *Mock) voltageAt(n int) float64 {
	t := float64(n) * m.cfg.SampleRate.Seconds()
	v := m.cfg.Offset + m.cfg.Amplitude*math.Sin(2*math.Pi*m.cfg.Frequency*t)
	noise := (math.Sin(float64(n)*0.7) + math.Cos(float64(n)*1.3)) * m.cfg.NoiseLevel * 0.5
	return v + noise
}
