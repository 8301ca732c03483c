package marker

import geom "github.com/peterstace/simplefeatures/geom"

// SegmentsPerDigit is the number of sample sites in one seven-segment cell.
const SegmentsPerDigit = 7

// Points returns the point itself as a one-element sequence.
func (p Point) Points() []SamplePoint {
	return []SamplePoint{{Pos: p.Pos, Size: p.Size}}
}

// Points returns Digits*7 sample sites, seven per digit cell in segment order
// [a b c d e f g], cells left to right along the Start->End axis.
//
//	 aa
//	f  b
//	 gg
//	e  c
//	 dd
func (s SevenSegment) Points() []SamplePoint {
	direction := s.End.Sub(s.Start).Unit()
	tangent := s.Bottom.Sub(s.Start)
	half := tangent.Scale(0.5)
	segmentLength := s.SegmentLength()

	points := make([]SamplePoint, 0, s.Digits*SegmentsPerDigit)
	for n := 0; n < s.Digits; n++ {
		origin := s.Start.Add(direction.Scale(float64(n) * (segmentLength + s.Spacing)))
		end := origin.Add(direction.Scale(segmentLength))
		center := origin.Midpoint(end)

		cell := [SegmentsPerDigit]geom.XY{
			center.Sub(tangent), // a: top
			end.Sub(half),       // b: upper right
			end.Add(half),       // c: lower right
			center.Add(tangent), // d: bottom
			origin.Add(half),    // e: lower left
			origin.Sub(half),    // f: upper left
			center,              // g: middle
		}

		for _, pos := range cell {
			points = append(points, SamplePoint{Pos: pos, Size: s.Size})
		}
	}

	return points
}
