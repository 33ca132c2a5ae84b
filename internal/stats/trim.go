package stats

// TrimKind selects the outlier-trimming strategy applied before the
// trimmed mean.
type TrimKind int

const (
	// TrimNone applies no trimming; the trimmed mean equals the mean.
	TrimNone TrimKind = iota
	// TrimDropFirstN excludes the first N chronological samples.
	// Addresses startup-measurement noise at trace begin.
	TrimDropFirstN
	// TrimDropBeyondStdDev excludes values farther than K standard
	// deviations from the untrimmed mean.
	TrimDropBeyondStdDev
)

// Trim describes one trimming strategy with its parameter.
type Trim struct {
	Kind TrimKind
	N    int     // TrimDropFirstN
	K    float64 // TrimDropBeyondStdDev
}
