package network

import (
	"fmt"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// Network is the arena of banks for a single trial. Edges are fixed once
// Generate returns; only balance-sheet state mutates afterwards.
type Network struct {
	Banks []Bank
	edges int
}

// New creates n unconnected banks.
func New(n int, sheet BalanceSheet) *Network {
	banks := make([]Bank, n)
	for i := range banks {
		banks[i] = NewBank(i, sheet)
	}
	return &Network{Banks: banks}
}

// ConnectionProbability returns the per-ordered-pair edge probability for a
// target average out-degree, capped at 1.
func ConnectionProbability(n int, degree float64) float64 {
	if n <= 0 || degree <= 0 {
		return 0
	}
	p := degree / float64(n)
	if p > 1 {
		return 1
	}
	return p
}

// Generate builds a directed Erdős–Rényi lending graph over n banks: every
// ordered pair (i, j), i != j, becomes a claim i→j with probability degree/n.
func Generate(n int, degree float64, sheet BalanceSheet, rng *utils.RandSource) *Network {
	net := New(n, sheet)
	p := ConnectionProbability(n, degree)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// A draw is taken for every ordered pair, self pairs and p of
			// 0 or 1 included, so the stream position only depends on n.
			hit := rng.BernoulliBool(p)
			if i != j && hit {
				net.addClaim(i, j)
			}
		}
	}
	return net
}

// AddClaim records that creditor lent to debtor. It is used to build
// hand-made networks; Generate uses the same path.
func (n *Network) AddClaim(creditor, debtor int) error {
	if creditor < 0 || creditor >= len(n.Banks) || debtor < 0 || debtor >= len(n.Banks) {
		return fmt.Errorf("claim %d->%d out of range for %d banks", creditor, debtor, len(n.Banks))
	}
	if creditor == debtor {
		return fmt.Errorf("bank %d cannot lend to itself", creditor)
	}
	n.addClaim(creditor, debtor)
	return nil
}

func (n *Network) addClaim(creditor, debtor int) {
	n.Banks[creditor].Claims = append(n.Banks[creditor].Claims, debtor)
	n.Banks[debtor].LendersCount++
	n.edges++
}

// Size returns the number of banks.
func (n *Network) Size() int {
	return len(n.Banks)
}

// Edges returns the number of claims in the network.
func (n *Network) Edges() int {
	return n.edges
}

// Bank returns a pointer into the arena.
func (n *Network) Bank(id int) *Bank {
	return &n.Banks[id]
}

// AverageDegree returns the realized mean out-degree of this network.
func (n *Network) AverageDegree() float64 {
	if len(n.Banks) == 0 {
		return 0
	}
	return float64(n.edges) / float64(len(n.Banks))
}

// DefaultedCount returns how many banks are marked defaulted.
func (n *Network) DefaultedCount() int {
	count := 0
	for i := range n.Banks {
		if n.Banks[i].Defaulted {
			count++
		}
	}
	return count
}

// Clone returns a deep copy, used to replay propagation on identical inputs.
func (n *Network) Clone() *Network {
	banks := make([]Bank, len(n.Banks))
	for i, b := range n.Banks {
		b.Claims = append([]int(nil), b.Claims...)
		banks[i] = b
	}
	return &Network{Banks: banks, edges: n.edges}
}
