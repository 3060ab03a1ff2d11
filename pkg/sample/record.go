package sample

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/itohio/golinduino/pkg/linduino"
)

// DecimationFactor is the LTC2508 digital filter down-sampling ratio reported
// in the configuration word that trails every code.
type DecimationFactor uint16

// Known decimation factors. DFUnknown is reported for any other status byte.
const (
	DFUnknown DecimationFactor = 0
	DF256     DecimationFactor = 256
	DF1024    DecimationFactor = 1024
	DF4096    DecimationFactor = 4096
	DF16384   DecimationFactor = 16384
)

// Status bytes sent by the LTC2508 for each decimation factor.
const (
	StatusDF256   byte = 0x85
	StatusDF1024  byte = 0xA5
	StatusDF4096  byte = 0xC5
	StatusDF16384 byte = 0xE5
)

// Sentinel errors wrapped by DecodeError.
var (
	ErrEmpty  = errors.New("empty record")
	ErrLength = errors.New("invalid record length")
	ErrSyntax = errors.New("invalid hex digit")
)

// DecodeError reports a record that could not be decoded.
type DecodeError struct {
	Line int    // 1-based input line number, 0 when unknown
	Raw  string // Offending text
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: cannot decode %q: %v", e.Line, e.Raw, e.Err)
	}
	return fmt.Sprintf("cannot decode %q: %v", e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Record is one decoded LTC2508 transfer.
type Record struct {
	Raw    string           // Hex text as received, without surrounding whitespace
	Value  uint64           // Full 40-bit value
	Code   uint32           // Value >> 8
	Status byte             // Value & 0xFF
	DF     DecimationFactor // Classified from Status
}

// Hex returns the record with the 0x prefix used in diagnostics.
func (r Record) Hex() string {
	return "0x" + r.Raw
}

// ClassifyStatus maps a status byte to its decimation factor.
func ClassifyStatus(status byte) DecimationFactor {
	switch status {
	case StatusDF256:
		return DF256
	case StatusDF1024:
		return DF1024
	case StatusDF4096:
		return DF4096
	case StatusDF16384:
		return DF16384
	default:
		return DFUnknown
	}
}

// ParseRecord validates and splits one line of captured text.
// The line must hold exactly ten hex digits once surrounding whitespace is removed.
func ParseRecord(line string) (Record, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return Record{}, &DecodeError{Raw: line, Err: ErrEmpty}
	}
	if len(raw) != linduino.RecordLength {
		return Record{}, &DecodeError{Raw: raw, Err: fmt.Errorf("%w: got %d characters, want %d", ErrLength, len(raw), linduino.RecordLength)}
	}
	for i := 0; i < len(raw); i++ {
		if !isHex(raw[i]) {
			return Record{}, &DecodeError{Raw: raw, Err: fmt.Errorf("%w %q at offset %d", ErrSyntax, raw[i], i)}
		}
	}

	value, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return Record{}, &DecodeError{Raw: raw, Err: err}
	}

	status := byte(value & 0xFF)
	return Record{
		Raw:    raw,
		Value:  value,
		Code:   uint32(value >> 8),
		Status: status,
		DF:     ClassifyStatus(status),
	}, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
