package decode

// digitPatterns maps binarized segment states in [a b c d e f g] order to
// decimal digits. Eleven patterns are valid: the ten standard encodings plus
// all-segments-off, which aliases to 0 so a blanked leading digit reads as
// zero. Every other pattern is a non-match.
//
//	 aa
//	f  b
//	 gg
//	e  c
//	 dd
var digitPatterns = map[[7]bool]int64{
	{true, true, true, true, true, true, false}:       0,
	{false, true, true, false, false, false, false}:   1,
	{true, true, false, true, true, false, true}:      2,
	{true, true, true, true, false, false, true}:      3,
	{false, true, true, false, false, true, true}:     4,
	{true, false, true, true, false, true, true}:      5,
	{true, false, true, true, true, true, true}:       6,
	{true, true, true, false, false, false, false}:    7,
	{true, true, true, true, true, true, true}:        8,
	{true, true, true, true, false, true, true}:       9,
	{false, false, false, false, false, false, false}: 0,
}

// matchDigit binarizes one digit cell's samples against the threshold and
// looks the pattern up. A chunk shorter than seven samples never matches.
func matchDigit(samples []float32, threshold float32) (int64, bool) {
	if len(samples) < segmentsPerDigit {
		return 0, false
	}

	var pattern [7]bool
	for i := range pattern {
		pattern[i] = samples[i] > threshold
	}

	digit, ok := digitPatterns[pattern]
	return digit, ok
}
