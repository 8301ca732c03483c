package decode

import "github.com/laundrywatch/laundrywatch/internal/marker"

const segmentsPerDigit = marker.SegmentsPerDigit

// initialStep is the first perturbation applied by the adaptive threshold
// search. Each retry flips direction and grows the magnitude by half, so the
// probes oscillate outward around the configured threshold until they leave
// [0,1].
const initialStep = 0.01

// Decode converts one marker's ordered luminance samples into a value. The
// samples must be in the same order the shape's Points produced them.
func Decode(shape marker.Shape, samples []float32, threshold float32) Value {
	switch shape.(type) {
	case marker.Point:
		if len(samples) == 0 {
			return Absent
		}
		return Boolean(samples[0] > threshold)
	case marker.SevenSegment:
		return decodeSevenSegment(samples, threshold)
	default:
		return Absent
	}
}

// decodeSevenSegment decodes a row of digit cells, seven samples per cell,
// retrying with perturbed thresholds until every cell matches a known pattern
// or a probe leaves [0,1].
func decodeSevenSegment(samples []float32, threshold float32) Value {
	step := float32(initialStep)

	for {
		if value, ok := decodeAllDigits(samples, threshold); ok {
			return Integer(value)
		}

		threshold += step
		step *= -1.5

		if threshold < 0 || threshold > 1 {
			return Absent
		}
	}
}

// decodeAllDigits attempts one probe: binarize every 7-sample chunk at the
// given threshold and fold the digits left to right into a base-10 integer.
func decodeAllDigits(samples []float32, threshold float32) (int64, bool) {
	var value int64
	for start := 0; start < len(samples); start += segmentsPerDigit {
		end := min(start+segmentsPerDigit, len(samples))
		digit, ok := matchDigit(samples[start:end], threshold)
		if !ok {
			return 0, false
		}
		value = value*10 + digit
	}
	return value, true
}
