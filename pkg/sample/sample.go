package sample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/itohio/golinduino/pkg/linduino"
	"github.com/sirupsen/logrus"
)

// FullScale is the code divisor: a code of 2^31 corresponds to vref.
const FullScale = 2147483648.0

// Sample is one decoded voltage reading.
type Sample struct {
	Index     int       // Position among successfully decoded records (arrival order)
	Line      int       // 1-based input line number, 0 when unknown
	Timestamp time.Time // Capture time, zero for file input
	Record    Record
	Voltage   float64 // Volts
}

// Result holds the outcome of decoding a whole stream.
type Result struct {
	Samples []Sample
	Skipped []error // Malformed lines that were logged and skipped
}

// Voltages returns the decoded voltages in input order.
func (r Result) Voltages() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Voltage
	}
	return out
}

// Converter is a function type that converts a RawRecord channel to a Sample channel.
type Converter func(in <-chan linduino.RawRecord) <-chan Sample

// CodeToVoltage converts an unsigned code to volts: code / 2^31 * vref.
// No clamping is applied, so codes above 2^31 yield voltages above vref.
func CodeToVoltage(code uint32, vref float64) float64 {
	return float64(code) / FullScale * vref
}

// SignedCodeToVoltage converts a two's complement code to volts.
func SignedCodeToVoltage(code uint32, vref float64) float64 {
	return float64(int32(code)) / FullScale * vref
}

// Decoder turns captured LTC2508 text into voltage samples.
type Decoder struct {
	vref     float64
	signed   bool
	failFast bool

	diag io.Writer
	log  logrus.FieldLogger
}

// NewDecoder creates a decoder. Per-record diagnostics are written to diag;
// pass nil to suppress them.
func NewDecoder(cfg config.DecoderConfig, diag io.Writer) *Decoder {
	if cfg.VRef == 0 {
		cfg.VRef = config.Default().Decoder.VRef
	}
	if diag == nil {
		diag = io.Discard
	}

	return &Decoder{
		vref:     cfg.VRef,
		signed:   cfg.Signed,
		failFast: cfg.FailFast,
		diag:     diag,
		log:      logrus.StandardLogger(),
	}
}

// WithLogger replaces the logger used for skipped records.
func (d *Decoder) WithLogger(log logrus.FieldLogger) *Decoder {
	d.log = log
	return d
}

// VRef returns the reference voltage used for scaling.
func (d *Decoder) VRef() float64 {
	return d.vref
}

// Voltage converts a code using the decoder's reference and signedness.
func (d *Decoder) Voltage(code uint32) float64 {
	if d.signed {
		return SignedCodeToVoltage(code, d.vref)
	}
	return CodeToVoltage(code, d.vref)
}

// Decode decodes one line and writes its diagnostic record.
func (d *Decoder) Decode(line string) (Sample, error) {
	rec, err := ParseRecord(line)
	if err != nil {
		return Sample{}, err
	}

	s := Sample{
		Record:  rec,
		Voltage: d.Voltage(rec.Code),
	}
	d.report(s)
	return s, nil
}

// DecodeAll decodes every line of r in order. Malformed lines are logged and
// skipped, or, when the decoder is fail-fast, end decoding with a *DecodeError.
// The samples decoded before an error are always returned.
func (d *Decoder) DecodeAll(ctx context.Context, r io.Reader) (Result, error) {
	var result Result

	lines := linduino.NewLineReader(r)
	lineNo := 0
	for {
		text, truncated, err := lines.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read records: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		lineNo++

		var s Sample
		if truncated {
			err = &DecodeError{Raw: abbreviate(text), Err: fmt.Errorf("%w: line longer than %d bytes", ErrLength, linduino.MaxLineLength)}
		} else {
			s, err = d.Decode(text)
		}
		if err != nil {
			var decErr *DecodeError
			if errors.As(err, &decErr) {
				decErr.Line = lineNo
			}
			if d.failFast {
				return result, err
			}
			d.log.WithError(err).WithField("line", lineNo).Warn("skipping malformed record")
			result.Skipped = append(result.Skipped, err)
			continue
		}

		s.Index = len(result.Samples)
		s.Line = lineNo
		result.Samples = append(result.Samples, s)
	}

	return result, nil
}

// NewConverter creates a converter function that decodes RawRecords into Samples.
// Output order follows input order. Malformed records are logged and dropped;
// a fail-fast decoder stops at the first one and closes its output.
func NewConverter(d *Decoder, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan linduino.RawRecord) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			lineNo := 0
			index := 0
			for raw := range in {
				lineNo++
				s, err := d.Decode(raw.Line)
				if err != nil {
					d.log.WithError(err).WithField("line", lineNo).Warn("failed to decode record")
					if d.failFast {
						return
					}
					continue
				}

				s.Index = index
				s.Line = lineNo
				s.Timestamp = raw.Timestamp
				index++
				out <- s
			}
		}()

		return out
	}
}

// abbreviate shortens text for error messages.
func abbreviate(text string) string {
	const keep = 2 * linduino.RecordLength
	if len(text) <= keep {
		return text
	}
	return text[:keep] + "..."
}

// report writes the human-readable diagnostic for one sample.
func (d *Decoder) report(s Sample) {
	fmt.Fprintf(d.diag, "\nData received: %s\n", s.Record.Hex())
	fmt.Fprintf(d.diag, "Voltage calculated: %f V\n", s.Voltage)
	fmt.Fprintf(d.diag, "DF : %d\n", s.Record.DF)
}
