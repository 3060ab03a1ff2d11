package linduino

// Device defines the interface for Linduino record sources (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Records() <-chan RawRecord
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
