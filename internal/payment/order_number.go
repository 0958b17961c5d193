package payment

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// OrderNumberGenerator produces human-readable order numbers.
type OrderNumberGenerator interface {
	Next() string
}

// TimestampOrderNumbers builds numbers as prefix + millisecond stamp + five
// random base-36 characters, upper-cased. The stamp never repeats within a
// process, so two numbers from the same generator always differ.
type TimestampOrderNumbers struct {
	prefix string
	last   atomic.Int64
	now    func() time.Time
}

// NewOrderNumberGenerator creates a generator with the given prefix.
func NewOrderNumberGenerator(prefix string) *TimestampOrderNumbers {
	return &TimestampOrderNumbers{prefix: prefix, now: time.Now}
}

// Next returns a new order number.
func (g *TimestampOrderNumbers) Next() string {
	stamp := g.nextStamp()
	return strings.ToUpper(g.prefix + strconv.FormatInt(stamp, 10) + randomBase36(5))
}

func (g *TimestampOrderNumbers) nextStamp() int64 {
	for {
		now := g.now().UnixMilli()
		last := g.last.Load()
		if now <= last {
			now = last + 1
		}
		if g.last.CompareAndSwap(last, now) {
			return now
		}
	}
}
