package meteo

// SpanKind tags an hour sample's position within a contiguous run of
// equal-category neighbors, used for grouped visual presentation.
type SpanKind string

const (
	SpanSingle    SpanKind = "single"
	SpanStart     SpanKind = "start"
	SpanContinues SpanKind = "continues"
	SpanEnd       SpanKind = "end"
)

// ComputeSpans computes the run boundary marker for every sample by comparing
// its category to its immediate neighbors. Boundary indices treat the missing
// neighbor as non-matching. Pure and order-preserving; result length always
// equals input length.
func ComputeSpans(samples []HourSample) []SpanKind {
	spans := make([]SpanKind, len(samples))

	for i := range samples {
		current := samples[i].Category
		prevMatches := i > 0 && samples[i-1].Category == current
		nextMatches := i < len(samples)-1 && samples[i+1].Category == current

		switch {
		case prevMatches && nextMatches:
			spans[i] = SpanContinues
		case nextMatches:
			spans[i] = SpanStart
		case prevMatches:
			spans[i] = SpanEnd
		default:
			spans[i] = SpanSingle
		}
	}

	return spans
}
