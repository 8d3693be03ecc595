package generation

import "time"

// Policy bounds the retry loop.
type Policy struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	JitterFraction   float64
	InitialJitterMin time.Duration
	InitialJitterMax time.Duration
	RetryableCodes   []string
}

// DefaultPolicy allows six attempts with exponential backoff capped at a
// minute.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:       5,
		BaseDelay:        time.Second,
		MaxDelay:         60 * time.Second,
		JitterFraction:   0.1,
		InitialJitterMin: 100 * time.Millisecond,
		InitialJitterMax: 2 * time.Second,
		RetryableCodes:   append([]string(nil), DefaultRetryableCodes...),
	}
}

// Delay is the backoff before the attempt following failed attempt n
// (0-based): min(BaseDelay*2^n, MaxDelay) scaled by 1+jitter, where jitter is
// in [-JitterFraction, +JitterFraction]. Jitter never pushes it past MaxDelay.
func (p Policy) Delay(n int, jitter float64) time.Duration {
	if n < 0 {
		n = 0
	}
	d := p.BaseDelay
	for i := 0; i < n && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if jitter > p.JitterFraction {
		jitter = p.JitterFraction
	}
	if jitter < -p.JitterFraction {
		jitter = -p.JitterFraction
	}
	d = time.Duration(float64(d) * (1 + jitter))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d < 0 {
		return 0
	}
	return d
}

// InitialDelay spreads concurrent first attempts. u is uniform in [0, 1).
func (p Policy) InitialDelay(u float64) time.Duration {
	if p.InitialJitterMax <= p.InitialJitterMin {
		return p.InitialJitterMin
	}
	span := p.InitialJitterMax - p.InitialJitterMin
	return p.InitialJitterMin + time.Duration(u*float64(span))
}

func (p Policy) codeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.RetryableCodes))
	for _, c := range p.RetryableCodes {
		set[c] = struct{}{}
	}
	return set
}
