package linduino

import (
	"fmt"
	"math"
	"time"
)

// RecordLength is the number of hex characters in one LTC2508 transfer:
// 32 code bits (D31:D0) followed by the 8-bit configuration word (W7:W0).
const RecordLength = 10

// fullScale is the code magnitude that corresponds to vref.
const fullScale = 2147483648.0

// RawRecord is one undecoded line received from the board.
type RawRecord struct {
	Timestamp time.Time
	Line      string
}

// FormatRecord renders a code and status byte the way the DC2222 sketch prints them.
func FormatRecord(code uint32, status byte) string {
	return fmt.Sprintf("%08X%02X", code, status)
}

// VoltageToCode converts a voltage into the LTC2508 two's complement code,
// saturating at the ends of the 32-bit range.
func VoltageToCode(voltage, vref float64) uint32 {
	scaled := math.Round(voltage / vref * fullScale)
	if scaled > math.MaxInt32 {
		scaled = math.MaxInt32
	} else if scaled < math.MinInt32 {
		scaled = math.MinInt32
	}
	return uint32(int32(scaled))
}
