package gateway

import (
	"io"
	"math"
)

// ProgressFunc receives integer percentages in [0, 100] as bytes move.
// It may be called zero or more times per transfer; callers that need
// monotonic display values must clamp regressions themselves.
type ProgressFunc func(percent int)

// progressReader wraps a reader and reports cumulative progress as an
// integer percentage of the declared total.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	onChange ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onChange: fn}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		if p.onChange != nil {
			p.onChange(p.percent())
		}
	}
	return n, err
}

// percent derives the rounded percentage, clamped to [0, 100].
// An unknown or zero total reports 0 until the transfer completes.
func (p *progressReader) percent() int {
	if p.total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(p.read) / float64(p.total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
