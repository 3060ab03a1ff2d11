package sample

// MovingAverage smooths src with a trailing window of the given size.
// Element i is the mean of src[max(0, i-window+1) : i+1], so the output has the
// same length and order as the input. A window of 1 or less copies src.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func MovingAverage(dst []float64, src []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	if cap(dst) >= len(src) {
		dst = dst[:len(src)]
	} else {
		dst = make([]float64, len(src))
	}

	var sum float64
	for i, v := range src {
		sum += v
		n := i + 1
		if i >= window {
			sum -= src[i-window]
			n = window
		}
		dst[i] = sum / float64(n)
	}

	return dst
}

// NewAveragingConverter creates a converter stage that replaces each sample's
// voltage with the trailing mean of the last windowSize voltages.
// It emits exactly one sample per input sample, preserving order and indices.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			window := make([]float64, 0, windowSize)
			var sum float64
			for s := range in {
				if len(window) == windowSize {
					sum -= window[0]
					window = window[1:]
				}
				window = append(window, s.Voltage)
				sum += s.Voltage

				s.Voltage = sum / float64(len(window))
				out <- s
			}
		}()

		return out
	}
}
