package montecarlo

import (
	"github.com/GoSim-25-26J-441/contagion-core/internal/contagion"
	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// TrialConfig describes one trial.
type TrialConfig struct {
	Banks            int
	Degree           float64
	CascadeThreshold float64
	Order            contagion.Order
	Sheet            network.BalanceSheet
}

// TrialOutcome is the measured result of one trial.
type TrialOutcome struct {
	Edges    int
	Defaults int
	Cascade  bool
}

// RunTrial generates a fresh network, defaults one uniformly chosen bank and
// classifies the cascade. A trial is a cascade when the defaulted fraction
// reaches the threshold (inclusive).
func RunTrial(cfg TrialConfig, rng *utils.RandSource) (TrialOutcome, error) {
	net := network.Generate(cfg.Banks, cfg.Degree, cfg.Sheet, rng)
	seed := rng.Intn(net.Size())

	res, err := contagion.NewPropagator(contagion.WithOrder(cfg.Order, rng)).Propagate(net, seed)
	if err != nil {
		return TrialOutcome{}, err
	}

	return TrialOutcome{
		Edges:    net.Edges(),
		Defaults: res.Size(),
		Cascade:  res.Fraction(cfg.Banks) >= cfg.CascadeThreshold,
	}, nil
}
