package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/itohio/golinduino/pkg/linduino"
	"github.com/itohio/golinduino/pkg/verify"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// noConfig returns a --config argument pointing at a file that does not exist.
func noConfig(t *testing.T) []string {
	return []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}
}

func writeCapture(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teraterm.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestDecode(t *testing.T) {
	path := writeCapture(t, "0000012885", "40000000A5", "zz", "80000000FF")

	out, err := run(t, append(noConfig(t), "decode", path)...)
	require.NoError(t, err)

	assert.Contains(t, out, "\nData received: 0x0000012885\nVoltage calculated: 0.000001 V\nDF : 256\n")
	assert.Contains(t, out, "\nData received: 0x40000000A5\nVoltage calculated: 2.500000 V\nDF : 1024\n")
	assert.Contains(t, out, "\nData received: 0x80000000FF\nVoltage calculated: 5.000000 V\nDF : 0\n")
	assert.Contains(t, out, "3 records decoded, 1 skipped")
	assert.Less(t, strings.Index(out, "0x0000012885"), strings.Index(out, "0x40000000A5"))
}

func TestDecode_Quiet(t *testing.T) {
	path := writeCapture(t, "40000000A5")

	out, err := run(t, append(noConfig(t), "decode", "-q", path)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "Data received")
	assert.Contains(t, out, "1 records decoded, 0 skipped")
}

func TestDecode_FailFast(t *testing.T) {
	path := writeCapture(t, "40000000A5", "zz", "40000000A5")

	_, err := run(t, append(noConfig(t), "decode", "--fail-fast", path)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecode_MissingFile(t *testing.T) {
	_, err := run(t, append(noConfig(t), "decode", filepath.Join(t.TempDir(), "nope.txt"))...)
	assert.Error(t, err)
}

func TestDecode_VRefPrecedence(t *testing.T) {
	path := writeCapture(t, "40000000A5")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.Default()
	cfg.Decoder.VRef = 1.0
	require.NoError(t, cfg.Save(cfgPath))

	out, err := run(t, "--config", cfgPath, "decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Voltage calculated: 0.500000 V")

	t.Setenv("LINDUINO_DECODER_VREF", "2.5")
	out, err = run(t, "--config", cfgPath, "decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Voltage calculated: 1.250000 V")

	out, err = run(t, "--config", cfgPath, "decode", "--vref", "10", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Voltage calculated: 5.000000 V")
}

func TestDecode_Signed(t *testing.T) {
	path := writeCapture(t, "C000000085")

	out, err := run(t, append(noConfig(t), "decode", "--signed", path)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Voltage calculated: -2.500000 V")
}

func TestDecode_InvalidLogLevel(t *testing.T) {
	path := writeCapture(t, "40000000A5")

	_, err := run(t, append(noConfig(t), "--log-level", "loud", "decode", path)...)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"LT_I2C/LT_I2C.cpp":   "int8_t i2c_poll(uint8_t address) {}",
		"LT_SPI/LT_SPI.cpp":   "void spi_enable(uint8_t divider) {}",
		"LTC2508/LTC2508.cpp": "uint8_t LTC2508_read_data() {}",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	out, err := run(t, append(noConfig(t), "search", root)...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "LT_I2C", "LT_I2C.cpp")+"\n", out)

	out, err = run(t, append(noConfig(t), "search", "--pattern", `LTC2508_\w+`, root)...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "LTC2508", "LTC2508.cpp")+"\n", out)
}

func TestSearch_MissingRoot(t *testing.T) {
	_, err := run(t, append(noConfig(t), "search", filepath.Join(t.TempDir(), "missing"))...)
	assert.Error(t, err)
}

func TestVerify_NoSketches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0o644))

	out, err := run(t, append(noConfig(t), "verify", "--tool", "linduino-no-such-tool", root)...)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestVerify_ReportsExitStatus(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// sh runs each sketch as a script, so the sketch content decides the exit status.
	root := t.TempDir()
	good := filepath.Join(root, "A", "A.ino")
	bad := filepath.Join(root, "B", "B.ino")
	for path, content := range map[string]string{good: "exit 0\n", bad: "exit 2\n"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	out, err := run(t, append(noConfig(t), "verify", "--tool", "sh", "--timeout", "10s", root)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B.ino")
	assert.Equal(t, good+"\n0\n"+bad+"\n2\n2 sketches: 1 passed, 1 failed\n", out)
}

func TestVerify_PrintsToolOutputOnFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	root := t.TempDir()
	sketch := filepath.Join(root, "DC2222A", "DC2222A.ino")
	require.NoError(t, os.MkdirAll(filepath.Dir(sketch), 0o755))
	script := "echo 'compiling DC2222A'\necho 'fatal error: LTC2508.h: No such file or directory' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(sketch, []byte(script), 0o644))

	out, err := run(t, append(noConfig(t), "verify", "--tool", "sh", "--timeout", "10s", root)...)
	require.Error(t, err)
	assert.Contains(t, out, sketch+"\n1\n")
	assert.Contains(t, out, "compiling DC2222A\n")
	assert.Contains(t, out, "fatal error: LTC2508.h: No such file or directory\n")
	assert.True(t, strings.HasSuffix(out, "1 sketches: 0 passed, 1 failed\n"), out)
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name   string
		result verify.Result
		want   string
	}{
		{
			name:   "passed output hidden",
			result: verify.Result{Path: "A.ino", ExitCode: 0, Output: []byte("Sketch uses 1024 bytes\n")},
			want:   "A.ino\n0\n",
		},
		{
			name:   "failed output shown",
			result: verify.Result{Path: "B.ino", ExitCode: 1, Output: []byte("error: 'foo' was not declared")},
			want:   "B.ino\n1\nerror: 'foo' was not declared\n",
		},
		{
			name:   "failed without output",
			result: verify.Result{Path: "C.ino", ExitCode: 2},
			want:   "C.ino\n2\n",
		},
		{
			name:   "tool error",
			result: verify.Result{Path: "D.ino", ExitCode: -1, Err: context.DeadlineExceeded, Output: []byte("partial\n")},
			want:   "D.ino\n-1 (context deadline exceeded)\npartial\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printResult(&out, tt.result)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestCaptureMock(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.Default()
	cfg.Mock.SampleRate = time.Millisecond
	require.NoError(t, cfg.Save(cfgPath))
	rawPath := filepath.Join(dir, "raw.txt")

	out, err := run(t, "--config", cfgPath, "capture", "--mock", "--count", "5", "--output", rawPath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "Data received: 0x"))
	assert.Equal(t, 5, strings.Count(out, "DF : 256"))

	data, err := os.ReadFile(rawPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Len(t, line, 10)
		assert.True(t, strings.HasSuffix(line, "85"), line)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Decoder, cfg.Decoder)
	assert.Equal(t, def.Plot, cfg.Plot)
	assert.Equal(t, def.Verify, cfg.Verify)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err)

	_, err = run(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "linduino version "))
}

func TestTapRecordsLimit(t *testing.T) {
	in := make(chan linduino.RawRecord, 10)
	for range 10 {
		in <- linduino.RawRecord{Line: "40000000A5"}
	}
	close(in)

	var raw bytes.Buffer
	log, _ := logtest.NewNullLogger()
	out := tapRecords(in, &raw, 3, make(chan struct{}), log)

	n := 0
	for range out {
		n++
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, "40000000A5\n40000000A5\n40000000A5\n", raw.String())
}

func TestTapRecordsStopsWhenDone(t *testing.T) {
	in := make(chan linduino.RawRecord)
	done := make(chan struct{})
	log, _ := logtest.NewNullLogger()
	out := tapRecords(in, nil, 0, done, log)

	// Nobody reads out: fill its buffer and one more.
	go func() {
		for range linduino.DefaultBufferSize + 1 {
			in <- linduino.RawRecord{Line: "40000000A5"}
		}
	}()

	require.Eventually(t, func() bool { return len(out) == linduino.DefaultBufferSize }, time.Second, time.Millisecond)
	close(done)

	n := 0
	for range out {
		n++
	}
	assert.Equal(t, linduino.DefaultBufferSize, n)
}

func TestThrottle(t *testing.T) {
	th := &throttle{interval: 10 * time.Millisecond}
	now := time.Now()

	assert.True(t, th.allow(now))
	assert.False(t, th.allow(now.Add(5*time.Millisecond)))
	assert.True(t, th.allow(now.Add(10*time.Millisecond)))
}
