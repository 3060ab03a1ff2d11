package sample

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a decoded capture.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // Sample standard deviation, 0 for fewer than two samples
	DF     map[DecimationFactor]int
}

// Summarize computes statistics over the voltages and decimation factors of samples.
func Summarize(samples []Sample) Stats {
	st := Stats{
		Count: len(samples),
		DF:    make(map[DecimationFactor]int),
	}
	if len(samples) == 0 {
		return st
	}

	voltages := make([]float64, len(samples))
	for i, s := range samples {
		voltages[i] = s.Voltage
		st.DF[s.Record.DF]++
	}

	st.Min = floats.Min(voltages)
	st.Max = floats.Max(voltages)
	if len(voltages) < 2 {
		st.Mean = voltages[0]
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(voltages, nil)

	return st
}

// String renders the summary the way the CLI prints it.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples: %d", s.Count)
	if s.Count == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\nmin: %f V\nmax: %f V\nmean: %f V\nstddev: %f V", s.Min, s.Max, s.Mean, s.StdDev)

	dfs := make([]DecimationFactor, 0, len(s.DF))
	for df := range s.DF {
		dfs = append(dfs, df)
	}
	sort.Slice(dfs, func(i, j int) bool { return dfs[i] < dfs[j] })
	for _, df := range dfs {
		fmt.Fprintf(&b, "\nDF %d: %d", df, s.DF[df])
	}

	return b.String()
}
