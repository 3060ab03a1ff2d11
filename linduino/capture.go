package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/itohio/golinduino/pkg/linduino"
	"github.com/itohio/golinduino/pkg/sample"
	"github.com/itohio/golinduino/pkg/trace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// pipelineBuffer is the channel buffer between capture stages.
const pipelineBuffer = 500

// captureOptions are the capture flags that have no configuration key.
type captureOptions struct {
	mock    bool
	list    bool
	output  string
	scope   bool
	count   int
	average int
	quiet   bool
}

func newCaptureCmd(c *cli) *cobra.Command {
	var opts captureOptions

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture and decode records live from a Linduino",
		Long: `Capture reads LTC2508 records from the DC2222 sketch over a serial port (or a
simulated board with --mock), decodes and prints them, and optionally logs the
raw lines to a file and plots them live. Stops on Ctrl+C or after --count records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return listPorts(cmd.OutOrStdout())
			}
			return c.capture(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringP("port", "p", "", "serial port (e.g. COM3 or /dev/ttyACM0)")
	cmd.Flags().Int("baud", 0, "serial baud rate")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "use a simulated board instead of a serial port")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list serial ports and exit")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "append raw records to this file")
	cmd.Flags().BoolVar(&opts.scope, "scope", false, "plot the trace live in a window")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "stop after this many records (0 = until interrupted)")
	cmd.Flags().IntVar(&opts.average, "average", 0, "moving average window in samples (0 = off)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress per-record diagnostics")
	addDecoderFlags(cmd)
	return cmd
}

func listPorts(out io.Writer) error {
	ports, err := linduino.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(out, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.Description != "" {
			fmt.Fprintf(out, "%s\t%s\n", p.Name, p.Description)
		} else {
			fmt.Fprintln(out, p.Name)
		}
	}
	return nil
}

// captureChain tracks the stages of a live capture for graceful shutdown.
type captureChain struct {
	device    linduino.Device
	trace     *trace.Trace
	done      chan struct{} // Closed when the trace stops consuming
	closeOnce sync.Once
}

// stop closes the device and waits for the pipeline to drain.
// Closing the device closes its records channel, which ends every stage in turn.
func (ch *captureChain) stop() {
	ch.closeOnce.Do(func() {
		ch.device.Close()
	})
	<-ch.done
}

func (c *cli) openDevice(mock bool) (linduino.Device, string) {
	if mock {
		return linduino.NewMock(&c.cfg.Mock, c.cfg.Decoder.VRef), "simulated board"
	}
	return linduino.New(c.cfg.Serial.Port, c.cfg.Serial.BaudRate, linduino.DefaultBufferSize), c.cfg.Serial.Port
}

func (c *cli) capture(ctx context.Context, out io.Writer, opts captureOptions) error {
	var rawLog io.Writer
	if opts.output != "" {
		f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open raw log: %w", err)
		}
		defer f.Close()
		rawLog = f
	}

	device, name := c.openDevice(opts.mock)
	if err := device.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", name, err)
	}
	c.log.WithField("device", name).Info("connected")

	var diag io.Writer = out
	if opts.quiet {
		diag = nil
	}
	decoder := sample.NewDecoder(c.cfg.Decoder, diag).WithLogger(c.log)

	window := int(c.cfg.Plot.XMax-c.cfg.Plot.XMin) + 1
	chain := &captureChain{
		device: device,
		trace:  trace.New(window),
		done:   make(chan struct{}),
	}

	records := tapRecords(device.Records(), rawLog, opts.count, chain.done, c.log)
	stream := sample.NewConverter(decoder, pipelineBuffer)(records)
	if opts.average > 1 {
		stream = sample.NewAveragingConverter(opts.average, pipelineBuffer)(stream)
	}

	if opts.scope {
		return c.captureWithScope(ctx, chain, stream, name)
	}

	go func() {
		defer close(chain.done)
		chain.trace.ProcessSamples(stream)
	}()

	select {
	case <-ctx.Done():
	case <-chain.done:
	}
	chain.stop()

	c.logCapture(chain.trace)
	return nil
}

// captureWithScope runs the capture behind a live plot window until the window
// is closed or the context is cancelled.
func (c *cli) captureWithScope(ctx context.Context, chain *captureChain, stream <-chan sample.Sample, name string) error {
	application := newApp()
	window, scopeWidget := newScopeWindow(application, c.cfg.Plot, "LTC2508 capture: "+name)

	// ~60 FPS
	limiter := &throttle{interval: 16 * time.Millisecond}
	chain.trace.OnUpdate(func(samples []sample.Sample) {
		if !limiter.allow(time.Now()) {
			return
		}
		voltages := make([]float64, len(samples))
		for i, s := range samples {
			voltages[i] = s.Voltage
		}
		fyne.Do(func() {
			scopeWidget.UpdateData(voltages)
		})
	})

	go func() {
		defer close(chain.done)
		chain.trace.ProcessSamples(stream)
		// Draw the final state; the throttle may have skipped the last update.
		voltages := chain.trace.Voltages()
		fyne.Do(func() {
			scopeWidget.UpdateData(voltages)
		})
	}()

	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	window.ShowAndRun()
	chain.stop()

	c.logCapture(chain.trace)
	return nil
}

func (c *cli) logCapture(tr *trace.Trace) {
	c.log.WithField("records", tr.Total()).Info("capture stopped")
}

// tapRecords forwards records, appending each raw line to w when it is not nil,
// and stops after limit records (0 = no limit) or once done is closed.
func tapRecords(in <-chan linduino.RawRecord, w io.Writer, limit int, done <-chan struct{}, log logrus.FieldLogger) <-chan linduino.RawRecord {
	out := make(chan linduino.RawRecord, linduino.DefaultBufferSize)

	go func() {
		defer close(out)

		n := 0
		for rec := range in {
			if w != nil {
				if _, err := fmt.Fprintln(w, rec.Line); err != nil {
					log.WithError(err).Error("failed to write raw log, logging disabled")
					w = nil
				}
			}

			select {
			case out <- rec:
			case <-done:
				return
			}
			n++
			if limit > 0 && n >= limit {
				return
			}
		}
	}()

	return out
}
