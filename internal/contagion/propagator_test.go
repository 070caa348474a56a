package contagion

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

func buildNetwork(t *testing.T, n int, claims [][2]int) *network.Network {
	t.Helper()
	net := network.New(n, network.DefaultBalanceSheet())
	for _, c := range claims {
		require.NoError(t, net.AddClaim(c[0], c[1]))
	}
	return net
}

func sortedIDs(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", FIFO, false},
		{"fifo", FIFO, false},
		{"LIFO", LIFO, false},
		{"random", Random, false},
		{"stack", FIFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrder(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Order {
	t.Helper()
	o, err := ParseOrder(s)
	require.NoError(t, err)
	return o
}

func TestPropagateNoEdges(t *testing.T) {
	net := network.New(10, network.DefaultBalanceSheet())
	res, err := Propagate(net, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, res.Defaulted)
	assert.Equal(t, 1, res.Seeds)
	assert.Zero(t, res.LossEvents)
	assert.InDelta(t, 0.1, res.Fraction(10), 1e-12)
}

func TestPropagateSingleLenderChain(t *testing.T) {
	// 0 -> 1 -> 2: bank 1 absorbs the whole pool of 0 and defaults with an
	// empty pool, so bank 2 takes a zero loss and survives.
	net := buildNetwork(t, 3, [][2]int{{0, 1}, {1, 2}})
	res, err := Propagate(net, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, res.Defaulted)
	assert.InDelta(t, 0.0, net.Bank(1).InterbankAssets, 1e-12)
	assert.InDelta(t, 0.2, net.Bank(2).InterbankAssets, 1e-12)
	assert.False(t, net.Bank(2).Defaulted)
	assert.Equal(t, 2, res.LossEvents)
}

func TestPropagateSharedLoss(t *testing.T) {
	// Bank 3 lends to 1 and 2 as well, so each share of 0's pool is 0.1.
	net := buildNetwork(t, 4, [][2]int{{0, 1}, {0, 2}, {3, 1}, {3, 2}})
	res, err := Propagate(net, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, res.Defaulted)
	assert.InDelta(t, 0.1, net.Bank(1).InterbankAssets, 1e-12)
	assert.InDelta(t, 0.1, net.Bank(2).InterbankAssets, 1e-12)
	assert.False(t, net.Bank(3).Defaulted)
}

func TestPropagateDiversifiedDebtorSurvives(t *testing.T) {
	// Bank 1 has six lenders; a 0.2/6 loss stays inside the 0.04 buffer.
	claims := [][2]int{{0, 1}}
	for lender := 2; lender < 7; lender++ {
		claims = append(claims, [2]int{lender, 1})
	}
	net := buildNetwork(t, 7, claims)
	res, err := Propagate(net, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.Defaulted)
	assert.True(t, net.Bank(1).Solvent())
	assert.InDelta(t, 0.2-0.2/6, net.Bank(1).InterbankAssets, 1e-12)
}

func TestPropagateCompleteGraph(t *testing.T) {
	t.Run("small complete graph cascades fully", func(t *testing.T) {
		net := network.Generate(5, 5, network.DefaultBalanceSheet(), utils.NewRandSource(1))
		res, err := Propagate(net, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, res.Size())
	})
	t.Run("large complete graph diversifies the loss away", func(t *testing.T) {
		net := network.Generate(100, 100, network.DefaultBalanceSheet(), utils.NewRandSource(1))
		res, err := Propagate(net, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, res.Defaulted)
	})
}

func TestPropagateSeedHandling(t *testing.T) {
	net := buildNetwork(t, 3, [][2]int{{0, 1}})

	_, err := Propagate(net, 3)
	assert.Error(t, err)
	_, err = Propagate(net, -1)
	assert.Error(t, err)

	res, err := Propagate(net, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Defaulted, "duplicate seeds are defaulted once")
	assert.Equal(t, 1, res.Seeds)

	res, err = Propagate(net, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Defaulted, "already defaulted seeds are skipped")
}

func TestPropagateMultipleSeeds(t *testing.T) {
	net := buildNetwork(t, 5, [][2]int{{0, 2}, {1, 3}})
	res, err := Propagate(net, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, sortedIDs(res.Defaulted))
	assert.Equal(t, 2, res.Seeds)
}

func TestPropagateZeroLendersPanics(t *testing.T) {
	net := buildNetwork(t, 2, [][2]int{{0, 1}})
	net.Bank(1).LendersCount = 0
	assert.Panics(t, func() {
		_, _ = Propagate(net, 0)
	})
}

func TestPropagateInvariantsOnRandomNetworks(t *testing.T) {
	orders := []Order{FIFO, LIFO, Random}
	for seed := int64(1); seed <= 40; seed++ {
		for _, order := range orders {
			rng := utils.NewRandSource(seed)
			net := network.Generate(60, float64(seed%8)+0.5, network.DefaultBalanceSheet(), rng)
			origin := rng.Intn(net.Size())

			res, err := NewPropagator(WithOrder(order, utils.NewRandSource(seed))).Propagate(net, origin)
			require.NoError(t, err)

			require.GreaterOrEqual(t, res.Size(), 1)
			assert.Equal(t, origin, res.Defaulted[0])
			assert.Equal(t, res.Size(), net.DefaultedCount())
			assert.LessOrEqual(t, res.Size(), net.Size())

			seen := make(map[int]bool)
			for _, id := range res.Defaulted {
				require.False(t, seen[id], "bank %d defaulted twice", id)
				seen[id] = true
				if id != origin {
					assert.False(t, net.Bank(id).Solvent(), "bank %d defaulted while solvent", id)
				}
			}
			for i := range net.Banks {
				if !net.Banks[i].Defaulted {
					assert.True(t, net.Banks[i].Solvent(), "bank %d insolvent but not defaulted", i)
				}
			}
		}
	}
}

// singleExposureNetwork builds a random lending tree rooted at bank 0 plus
// outside lenders that nobody lends to. Every tree bank can only be hit by
// its tree parent, which makes the outcome independent of processing order.
func singleExposureNetwork(t *testing.T, rng *utils.RandSource, treeSize, outside int) *network.Network {
	t.Helper()
	net := network.New(treeSize+outside, network.DefaultBalanceSheet())
	for child := 1; child < treeSize; child++ {
		require.NoError(t, net.AddClaim(rng.Intn(child), child))
	}
	for o := treeSize; o < treeSize+outside; o++ {
		for k := 0; k < 3; k++ {
			require.NoError(t, net.AddClaim(o, 1+rng.Intn(treeSize-1)))
		}
	}
	return net
}

func TestPropagateOrderIndependence(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		base := singleExposureNetwork(t, utils.NewRandSource(seed), 30, 20)

		var reference *network.Network
		var referenceSet []int
		for _, order := range []Order{FIFO, LIFO, Random, Random} {
			net := base.Clone()
			res, err := NewPropagator(WithOrder(order, utils.NewRandSource(seed*31))).Propagate(net, 0)
			require.NoError(t, err)

			set := sortedIDs(res.Defaulted)
			if reference == nil {
				reference, referenceSet = net, set
				continue
			}
			require.Equal(t, referenceSet, set, "seed %d order %s", seed, order)
			for i := range net.Banks {
				assert.Equal(t, reference.Banks[i].InterbankAssets, net.Banks[i].InterbankAssets,
					"seed %d order %s bank %d", seed, order, i)
			}
		}
	}
}

func TestPropagateOrderUnderContention(t *testing.T) {
	// Banks 1 and 2 both lend to bank 3 and default in the same wave. The
	// one processed first fixes bank 3's loss, so bank 3's pool depends on
	// order while the default set does not.
	claims := [][2]int{
		{0, 1}, {0, 2},
		{5, 1}, {5, 2}, {6, 2},
		{1, 3}, {2, 3},
		{3, 4}, {5, 4}, {6, 4},
	}

	fifoNet := buildNetwork(t, 7, claims)
	fifo, err := NewPropagator(WithOrder(FIFO, nil)).Propagate(fifoNet, 0)
	require.NoError(t, err)

	lifoNet := buildNetwork(t, 7, claims)
	lifo, err := NewPropagator(WithOrder(LIFO, nil)).Propagate(lifoNet, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, fifo.Defaulted)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, sortedIDs(lifo.Defaulted))

	assert.InDelta(t, 0.15, fifoNet.Bank(3).InterbankAssets, 1e-12)
	assert.InDelta(t, 0.2-(0.2-0.2/3)/2, lifoNet.Bank(3).InterbankAssets, 1e-12)
	assert.False(t, fifoNet.Bank(5).Defaulted)
	assert.False(t, lifoNet.Bank(6).Defaulted)
}
