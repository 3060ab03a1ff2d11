//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

const hexDigits = "0123456789ABCDEF"

var (
	spi  = machine.SPI0
	uart = machine.UART0

	tx [RECORD_BYTES]byte
	rx [RECORD_BYTES]byte

	// One output line: 10 hex digits and a newline
	line [2*RECORD_BYTES + 1]byte
)

func main() {
	PIN_CS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_MCLK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_DRL.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_CS.High()
	PIN_MCLK.Low()

	spi.Configure(machine.SPIConfig{
		Frequency: SPI_FREQUENCY,
		Mode:      0,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	interval := time.Second / READS_PER_SECOND
	next := time.Now()

	for {
		// Run one full filter window so every read returns a fresh word
		sendPulses(PIN_MCLK, DECIMATION_FACTOR)

		if waitReady() {
			readRecord()
			writeRecord()
		}

		next = next.Add(interval)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		} else {
			next = time.Now()
		}
	}
}

// sendPulses starts n conversions on the MCLK pin.
func sendPulses(pin machine.Pin, n int) {
	for range n {
		pin.High()
		pin.Low()
	}
}

// waitReady waits for DRL to go low.
func waitReady() bool {
	deadline := time.Now().Add(BUSY_TIMEOUT_US * time.Microsecond)
	for PIN_DRL.Get() {
		if time.Now().After(deadline) {
			return false
		}
	}
	return true
}

// readRecord clocks the 32-bit code (MSB first) and the configuration word out of the ADC.
func readRecord() {
	PIN_CS.Low()
	spi.Tx(tx[:], rx[:])
	PIN_CS.High()
}

// writeRecord prints the record as ten uppercase hex digits: code first, then
// the configuration word.
func writeRecord() {
	for i, b := range rx {
		line[2*i] = hexDigits[b>>4]
		line[2*i+1] = hexDigits[b&0x0F]
	}
	line[len(line)-1] = '\n'
	uart.Write(line[:])
}
