package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Decoder DecoderConfig `yaml:"decoder"`
	Plot    PlotConfig    `yaml:"plot"`
	Search  SearchConfig  `yaml:"search"`
	Verify  VerifyConfig  `yaml:"verify"`
	Mock    MockConfig    `yaml:"mock"`
	Logging LoggingConfig `yaml:"logging"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// DecoderConfig contains LTC2508 record decoding parameters.
type DecoderConfig struct {
	VRef     float64 `yaml:"vref"`      // Full-scale reference voltage (V)
	Signed   bool    `yaml:"signed"`    // Treat the 32-bit code as two's complement
	FailFast bool    `yaml:"fail_fast"` // Abort on the first malformed record instead of skipping it
}

// PlotConfig contains chart axes and output parameters.
type PlotConfig struct {
	Title     string  `yaml:"title"`
	XMin      float64 `yaml:"x_min"`
	XMax      float64 `yaml:"x_max"`
	YMin      float64 `yaml:"y_min"`
	YMax      float64 `yaml:"y_max"`
	XLabel    string  `yaml:"x_label"`
	YLabel    string  `yaml:"y_label"`
	MaxPoints int     `yaml:"max_points"` // Points drawn before the trace is decimated for display
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
}

// SearchConfig contains source tree search parameters.
type SearchConfig struct {
	Root    string   `yaml:"root"`
	Pattern string   `yaml:"pattern"`
	Include []string `yaml:"include,omitempty"` // Optional doublestar globs relative to root
}

// VerifyConfig contains batch sketch verification parameters.
type VerifyConfig struct {
	Root    string        `yaml:"root"`
	Tool    string        `yaml:"tool"`
	Args    []string      `yaml:"args"` // "{sketch}" is replaced with the sketch path
	Suffix  string        `yaml:"suffix"`
	Timeout time.Duration `yaml:"timeout"` // Per-sketch timeout (0 = none)
}

// MockConfig contains simulated board configuration.
type MockConfig struct {
	SampleRate time.Duration `yaml:"sample_rate"` // Interval between records
	Amplitude  float64       `yaml:"amplitude"`   // Sine amplitude (V)
	Frequency  float64       `yaml:"frequency"`   // Sine frequency (Hz)
	Offset     float64       `yaml:"offset"`      // DC offset (V)
	NoiseLevel float64       `yaml:"noise_level"` // Noise level (V)
	Status     uint8         `yaml:"status"`      // Status byte appended to every record
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Linduino enumerates as a COM port on Windows, /dev/ttyACM0 on Linux
			BaudRate: 115200,
		},
		Decoder: DecoderConfig{
			VRef:     5.0,
			Signed:   false,
			FailFast: false,
		},
		Plot: PlotConfig{
			Title:     "LTC2508 capture",
			XMin:      0,
			XMax:      500,
			YMin:      -5,
			YMax:      5,
			XLabel:    "Samples",
			YLabel:    "Voltage (V)",
			MaxPoints: 1000,
			Width:     1200,
			Height:    800,
		},
		Search: SearchConfig{
			Root:    "LTSketchbook/libraries",
			Pattern: "i2c_poll",
		},
		Verify: VerifyConfig{
			Root:    "LTSketchbook/Part Number",
			Tool:    "arduino",
			Args:    []string{"{sketch}", "--verify"},
			Suffix:  ".ino",
			Timeout: 0,
		},
		Mock: MockConfig{
			SampleRate: 10 * time.Millisecond,
			Amplitude:  2.0,
			Frequency:  1.0,
			Offset:     2.5,
			NoiseLevel: 0.001,
			Status:     0x85, // DF 256
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Decoder.VRef == 0 {
		c.Decoder.VRef = def.Decoder.VRef
	}

	// An empty range means the section was left out; a zero bound on its own is valid.
	if c.Plot.XMin == 0 && c.Plot.XMax == 0 {
		c.Plot.XMin, c.Plot.XMax = def.Plot.XMin, def.Plot.XMax
	}
	if c.Plot.YMin == 0 && c.Plot.YMax == 0 {
		c.Plot.YMin, c.Plot.YMax = def.Plot.YMin, def.Plot.YMax
	}
	if c.Plot.XLabel == "" {
		c.Plot.XLabel = def.Plot.XLabel
	}
	if c.Plot.YLabel == "" {
		c.Plot.YLabel = def.Plot.YLabel
	}
	if c.Plot.MaxPoints == 0 {
		c.Plot.MaxPoints = def.Plot.MaxPoints
	}
	if c.Plot.Width == 0 {
		c.Plot.Width = def.Plot.Width
	}
	if c.Plot.Height == 0 {
		c.Plot.Height = def.Plot.Height
	}

	if c.Search.Root == "" {
		c.Search.Root = def.Search.Root
	}
	if c.Search.Pattern == "" {
		c.Search.Pattern = def.Search.Pattern
	}

	if c.Verify.Root == "" {
		c.Verify.Root = def.Verify.Root
	}
	if c.Verify.Tool == "" {
		c.Verify.Tool = def.Verify.Tool
	}
	if len(c.Verify.Args) == 0 {
		c.Verify.Args = def.Verify.Args
	}
	if c.Verify.Suffix == "" {
		c.Verify.Suffix = def.Verify.Suffix
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Frequency == 0 {
		c.Mock.Frequency = def.Mock.Frequency
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

// Validate reports configuration values that would make an operation meaningless.
func (c *Config) Validate() error {
	if c.Decoder.VRef <= 0 {
		return fmt.Errorf("decoder vref must be positive, got %g", c.Decoder.VRef)
	}
	if c.Plot.XMax <= c.Plot.XMin {
		return fmt.Errorf("plot x range is empty: [%g, %g]", c.Plot.XMin, c.Plot.XMax)
	}
	if c.Plot.YMax <= c.Plot.YMin {
		return fmt.Errorf("plot y range is empty: [%g, %g]", c.Plot.YMin, c.Plot.YMax)
	}
	if c.Verify.Timeout < 0 {
		return fmt.Errorf("verify timeout must not be negative, got %v", c.Verify.Timeout)
	}
	return nil
}
