package contagion

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// Order selects which defaulted bank the frontier hands out next.
type Order int

const (
	// FIFO processes defaults in the order they occurred.
	FIFO Order = iota
	// LIFO processes the most recent default first.
	LIFO
	// Random picks a uniformly random pending default.
	Random
)

func (o Order) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// ParseOrder parses "fifo", "lifo" or "random". An empty string means FIFO.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "random":
		return Random, nil
	default:
		return FIFO, fmt.Errorf("unknown frontier order %q (must be fifo, lifo, or random)", s)
	}
}

// pending is a defaulted bank whose loss pool has not been distributed yet.
type pending struct {
	bank int
	pool float64
}

// frontier is the worklist of defaulted-but-unpropagated banks.
type frontier struct {
	order Order
	rng   *utils.RandSource
	items []pending
	head  int
}

func newFrontier(order Order, rng *utils.RandSource, capacity int) *frontier {
	return &frontier{
		order: order,
		rng:   rng,
		items: make([]pending, 0, capacity),
	}
}

func (f *frontier) push(p pending) {
	f.items = append(f.items, p)
}

func (f *frontier) len() int {
	return len(f.items) - f.head
}

func (f *frontier) pop() pending {
	switch f.order {
	case LIFO:
		last := len(f.items) - 1
		p := f.items[last]
		f.items = f.items[:last]
		return p
	case Random:
		idx := f.head + f.rng.Intn(f.len())
		p := f.items[idx]
		f.items[idx] = f.items[len(f.items)-1]
		f.items = f.items[:len(f.items)-1]
		return p
	default:
		p := f.items[f.head]
		f.head++
		return p
	}
}
