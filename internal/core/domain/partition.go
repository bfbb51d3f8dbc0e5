package domain

import (
	"fmt"
	"time"
)

// PartitionLayout is the wire format of a date partition key.
const PartitionLayout = "2006-01-02"

// Partition identifies one calendar date's slice of the data set. It is the
// explicit key threaded through every component instead of being inferred
// from path strings.
type Partition struct {
	t time.Time
}

func NewPartition(t time.Time) Partition {
	y, m, d := t.Date()
	return Partition{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParsePartition(s string) (Partition, error) {
	t, err := time.Parse(PartitionLayout, s)
	if err != nil {
		return Partition{}, fmt.Errorf("invalid partition key %q: %w", s, err)
	}
	return Partition{t: t}, nil
}

func (p Partition) String() string {
	return p.t.Format(PartitionLayout)
}

func (p Partition) Time() time.Time {
	return p.t
}

func (p Partition) Before(q Partition) bool {
	return p.t.Before(q.t)
}

func (p Partition) IsZero() bool {
	return p.t.IsZero()
}
