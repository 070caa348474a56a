// Package contagion computes default cascades over a lending network.
package contagion

import (
	"fmt"

	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// Result is the stable outcome of one propagation.
type Result struct {
	// Defaulted lists every defaulted bank in the order it defaulted.
	Defaulted []int
	// Seeds is the number of distinct seed banks.
	Seeds int
	// LossEvents counts individual loss write-offs applied to debtors.
	LossEvents int
}

// Size returns the number of defaulted banks.
func (r Result) Size() int {
	return len(r.Defaulted)
}

// Fraction returns the share of n banks that defaulted.
func (r Result) Fraction(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(len(r.Defaulted)) / float64(n)
}

// Propagator distributes losses from defaulted banks until no new defaults
// occur.
type Propagator struct {
	order Order
	rng   *utils.RandSource
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithOrder sets the frontier order. Random ordering draws from rng.
func WithOrder(order Order, rng *utils.RandSource) Option {
	return func(p *Propagator) {
		p.order = order
		p.rng = rng
	}
}

// NewPropagator creates a FIFO propagator unless overridden.
func NewPropagator(opts ...Option) *Propagator {
	p := &Propagator{order: FIFO}
	for _, opt := range opts {
		opt(p)
	}
	if p.order == Random && p.rng == nil {
		p.rng = utils.NewRandSource(0)
	}
	return p
}

// Propagate defaults seeds and runs the cascade to exhaustion, mutating net.
// Banks are marked defaulted as they enter the frontier, so each bank is
// processed at most once and the loop runs at most net.Size() times.
func (p *Propagator) Propagate(net *network.Network, seeds ...int) (Result, error) {
	for _, id := range seeds {
		if id < 0 || id >= net.Size() {
			return Result{}, fmt.Errorf("seed bank %d out of range for %d banks", id, net.Size())
		}
	}

	res := Result{Defaulted: make([]int, 0, len(seeds))}
	work := newFrontier(p.order, p.rng, len(seeds))

	enqueue := func(id int) {
		b := net.Bank(id)
		b.Defaulted = true
		res.Defaulted = append(res.Defaulted, id)
		// The pool is fixed here; the bank receives no further losses.
		work.push(pending{bank: id, pool: b.InterbankAssets})
	}

	for _, id := range seeds {
		if net.Bank(id).Defaulted {
			continue
		}
		enqueue(id)
		res.Seeds++
	}

	for work.len() > 0 {
		next := work.pop()
		for _, debtorID := range net.Bank(next.bank).Claims {
			debtor := net.Bank(debtorID)
			if debtor.Defaulted {
				continue
			}
			if debtor.LendersCount <= 0 {
				panic(fmt.Sprintf("contagion: bank %d holds a claim on bank %d with lenders count %d",
					next.bank, debtorID, debtor.LendersCount))
			}
			res.LossEvents++
			if !debtor.TakeLoss(next.pool / float64(debtor.LendersCount)) {
				enqueue(debtorID)
			}
		}
	}

	return res, nil
}

// Propagate runs a FIFO cascade from seeds over net.
func Propagate(net *network.Network, seeds ...int) (Result, error) {
	return NewPropagator().Propagate(net, seeds...)
}
