package trace

import (
	"sync"

	"github.com/itohio/golinduino/pkg/sample"
)

var _ Recorder = (*Trace)(nil)

// Recorder accumulates decoded samples in arrival order.
type Recorder interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample               // Current buffer, oldest first
	Voltages() []float64                    // Voltages of Samples, same order
	OnUpdate(func(samples []sample.Sample)) // Register callback for updates
}

// Trace implements Recorder.
// The buffer only grows by appending, so index order is arrival order. When a
// limit is set the oldest samples are dropped from the front to keep the most
// recent window; the samples keep their original Index values.
type Trace struct {
	limit int // Maximum samples retained, 0 = unlimited

	samples []sample.Sample
	total   int // Samples appended since creation or Reset

	mu sync.RWMutex

	callbacks []func(samples []sample.Sample)
	cbMu      sync.RWMutex

	// Shutdown control
	shutdown bool // Set to true when input channel closes, prevents further callbacks
}

// New creates a new Trace retaining at most limit samples (0 = unlimited).
func New(limit int) *Trace {
	if limit < 0 {
		limit = 0
	}
	return &Trace{
		limit:   limit,
		samples: make([]sample.Sample, 0),
	}
}

// ProcessSamples appends samples from the input channel until it closes.
// When the input channel closes, it sets shutdown flag to prevent further callbacks.
func (t *Trace) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		t.Append(s)
	}
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// Append adds one sample and notifies callbacks.
func (t *Trace) Append(s sample.Sample) {
	t.mu.Lock()
	t.samples = append(t.samples, s)
	t.total++
	if t.limit > 0 && len(t.samples) > t.limit {
		drop := len(t.samples) - t.limit
		// Compact instead of reslicing so the backing array does not grow without bound.
		n := copy(t.samples, t.samples[drop:])
		t.samples = t.samples[:n]
	}
	shouldNotify := !t.shutdown
	t.mu.Unlock()

	if shouldNotify {
		t.notifyCallbacks()
	}
}

// Samples returns a copy of the current samples buffer.
func (t *Trace) Samples() []sample.Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]sample.Sample, len(t.samples))
	copy(result, t.samples)
	return result
}

// Voltages returns the voltages of the current buffer in order.
func (t *Trace) Voltages() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]float64, len(t.samples))
	for i, s := range t.samples {
		result[i] = s.Voltage
	}
	return result
}

// Total returns how many samples were appended, including dropped ones.
func (t *Trace) Total() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// OnUpdate registers a callback function that will be called when samples are updated.
// The callback should copy data quickly and return as fast as possible.
func (t *Trace) OnUpdate(callback func(samples []sample.Sample)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// Reset clears the buffer and the shutdown flag so a new capture can start.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = t.samples[:0]
	t.total = 0
	t.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with a copy of the buffer.
func (t *Trace) notifyCallbacks() {
	samplesCopy := t.Samples()

	t.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy)
		}
	}
}
