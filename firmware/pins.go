//go:build tinygo

package main

import "machine"

const (
	// Conversion control
	// The LTC2508 filters DF conversions into one output word; one MCLK pulse starts a conversion.
	DECIMATION_FACTOR = 256  // Must match the DF pins strapped on the DC2222 (256, 1024, 4096 or 16384)
	READS_PER_SECOND  = 50   // Output words read per second
	SPI_FREQUENCY     = 4e6  // SCK frequency in Hz
	RECORD_BYTES      = 5    // 32-bit code followed by the configuration word
	BUSY_TIMEOUT_US   = 1000 // Give up waiting for DRL after this many microseconds

	// SPI pins (SCK, SDO and SDI use the board's SPI0 defaults)
	PIN_CS   = machine.D3
	PIN_MCLK = machine.D2
	PIN_DRL  = machine.D1 // Low when a new filtered word is ready

	// Serial configuration
	// Format: 10 hex characters + "\n" = 11 bytes per record.
	// 50 records/sec * 11 bytes = 550 bytes/sec, well inside 115200 8N1 (11,520 bytes/sec).
	UART_BAUD_RATE = 115200
)
