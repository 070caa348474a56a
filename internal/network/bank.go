// Package network holds the bank balance sheets of one trial and the random
// interbank lending graph that connects them.
package network

// Default balance-sheet parameters of the stylized model.
const (
	DefaultExternalAssets  = 0.8
	DefaultInterbankAssets = 0.2
	DefaultLiabilities     = 0.96
)

// BalanceSheet is the starting position every bank of a network is built with.
type BalanceSheet struct {
	ExternalAssets  float64 `json:"external_assets" yaml:"external_assets"`
	InterbankAssets float64 `json:"interbank_assets" yaml:"interbank_assets"`
	Liabilities     float64 `json:"liabilities" yaml:"liabilities"`
}

// DefaultBalanceSheet returns the 0.8 / 0.2 / 0.96 sheet.
func DefaultBalanceSheet() BalanceSheet {
	return BalanceSheet{
		ExternalAssets:  DefaultExternalAssets,
		InterbankAssets: DefaultInterbankAssets,
		Liabilities:     DefaultLiabilities,
	}
}

// Bank is one node of the lending network. Claims are indices into the
// owning Network's bank slice; banks never reference each other directly.
type Bank struct {
	ID              int
	ExternalAssets  float64
	InterbankAssets float64
	Liabilities     float64
	// LendersCount is the number of banks holding a claim on this bank.
	LendersCount int
	Defaulted    bool
	// Claims lists the debtors this bank has lent to.
	Claims []int
}

// NewBank creates a solvent, unconnected bank from sheet.
func NewBank(id int, sheet BalanceSheet) Bank {
	return Bank{
		ID:              id,
		ExternalAssets:  sheet.ExternalAssets,
		InterbankAssets: sheet.InterbankAssets,
		Liabilities:     sheet.Liabilities,
	}
}

// TotalAssets returns external plus interbank assets.
func (b *Bank) TotalAssets() float64 {
	return b.ExternalAssets + b.InterbankAssets
}

// Solvent reports whether assets still cover liabilities.
func (b *Bank) Solvent() bool {
	return b.TotalAssets() >= b.Liabilities
}

// TakeLoss writes loss off the interbank assets and reports whether the bank
// is still solvent afterwards.
func (b *Bank) TakeLoss(loss float64) bool {
	b.InterbankAssets -= loss
	return b.Solvent()
}
