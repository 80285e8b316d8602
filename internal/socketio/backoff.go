package socketio

import "time"

// backoff is an exponential delay capped at max.
type backoff struct {
	base    time.Duration
	max     time.Duration
	attempt int
}

func newBackoff(base, max time.Duration) *backoff {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if max < base {
		max = base
	}
	return &backoff{base: base, max: max}
}

// Next returns the delay for the current attempt and advances the counter
// until the cap is reached.
func (b *backoff) Next() time.Duration {
	delay := b.base << uint(b.attempt)
	if delay > b.max || delay <= 0 {
		delay = b.max
	} else {
		b.attempt++
	}
	return delay
}

// Reset restarts the sequence after a successful connection.
func (b *backoff) Reset() {
	b.attempt = 0
}
