package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 5.0, cfg.Decoder.VRef)
	assert.False(t, cfg.Decoder.Signed)
	assert.False(t, cfg.Decoder.FailFast)
	assert.Equal(t, float64(0), cfg.Plot.XMin)
	assert.Equal(t, float64(500), cfg.Plot.XMax)
	assert.Equal(t, float64(-5), cfg.Plot.YMin)
	assert.Equal(t, float64(5), cfg.Plot.YMax)
	assert.Equal(t, "Samples", cfg.Plot.XLabel)
	assert.Equal(t, "Voltage (V)", cfg.Plot.YLabel)
	assert.Equal(t, "i2c_poll", cfg.Search.Pattern)
	assert.Equal(t, ".ino", cfg.Verify.Suffix)
	assert.Equal(t, []string{"{sketch}", "--verify"}, cfg.Verify.Args)
	assert.Equal(t, uint8(0x85), cfg.Mock.Status)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

decoder:
  vref: 4.096
  signed: true
  fail_fast: true

plot:
  x_max: 1000
  y_min: -4.096
  y_max: 4.096

search:
  root: "/src/LTSketchbook"
  pattern: "spi_transfer_block"
  include: ["**/*.cpp", "**/*.h"]

verify:
  tool: "/opt/arduino/arduino"
  suffix: ".pde"
  timeout: 90s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 4.096, cfg.Decoder.VRef)
	assert.True(t, cfg.Decoder.Signed)
	assert.True(t, cfg.Decoder.FailFast)
	assert.Equal(t, float64(0), cfg.Plot.XMin)
	assert.Equal(t, float64(1000), cfg.Plot.XMax)
	assert.Equal(t, -4.096, cfg.Plot.YMin)
	assert.Equal(t, "/src/LTSketchbook", cfg.Search.Root)
	assert.Equal(t, "spi_transfer_block", cfg.Search.Pattern)
	assert.Equal(t, []string{"**/*.cpp", "**/*.h"}, cfg.Search.Include)
	assert.Equal(t, "/opt/arduino/arduino", cfg.Verify.Tool)
	assert.Equal(t, ".pde", cfg.Verify.Suffix)
	assert.Equal(t, 90*time.Second, cfg.Verify.Timeout)
	assert.Equal(t, []string{"{sketch}", "--verify"}, cfg.Verify.Args) // default
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
plot:
  title: "bench"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, "bench", cfg.Plot.Title)
	assert.Equal(t, 5.0, cfg.Decoder.VRef)            // default
	assert.Equal(t, float64(500), cfg.Plot.XMax)       // default
	assert.Equal(t, float64(-5), cfg.Plot.YMin)        // default
	assert.Equal(t, "Voltage (V)", cfg.Plot.YLabel)    // default
	assert.Equal(t, "i2c_poll", cfg.Search.Pattern)    // default
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate)
}

func TestLoad_ZeroBoundKept(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("plot:\n  y_min: 0\n  y_max: 2.5\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, float64(0), cfg.Plot.YMin)
	assert.Equal(t, 2.5, cfg.Plot.YMax)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Decoder.VRef = 2.5
	cfg.Verify.Timeout = time.Minute

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 2.5, loaded.Decoder.VRef)
	assert.Equal(t, time.Minute, loaded.Verify.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "zero vref", modify: func(c *Config) { c.Decoder.VRef = 0 }, wantErr: true},
		{name: "negative vref", modify: func(c *Config) { c.Decoder.VRef = -5 }, wantErr: true},
		{name: "empty x range", modify: func(c *Config) { c.Plot.XMax = c.Plot.XMin }, wantErr: true},
		{name: "inverted y range", modify: func(c *Config) { c.Plot.YMin, c.Plot.YMax = 5, -5 }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Verify.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
