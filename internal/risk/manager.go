package risk

import (
	"fmt"
	"math"
)

// Config holds risk management configuration for micro futures
// contracts.
type Config struct {
	AccountEquity      float64 // account size in dollars
	MaxRiskPct         float64 // fraction of equity risked per trade
	MicroContractValue float64 // dollars per point per contract
	MinContracts       int
	MaxContracts       int
}

// Manager sizes positions in micro contracts and enforces the per-trade
// risk cap.
type Manager struct {
	config Config
}

// NewManager creates a risk manager with fallbacks for zero-valued
// config fields.
func NewManager(config Config) *Manager {
	if config.MicroContractValue <= 0 {
		config.MicroContractValue = 2.0
	}
	if config.MinContracts <= 0 {
		config.MinContracts = 1
	}
	if config.MaxContracts <= 0 {
		config.MaxContracts = 3
	}
	return &Manager{config: config}
}

// Config returns the effective risk configuration.
func (m *Manager) Config() Config {
	return m.config
}

// PositionSize returns the number of micro contracts for a short entry
// and stop, sized so the dollar risk stays within the per-trade cap and
// clamped to the configured contract bounds.
func (m *Manager) PositionSize(entryPrice, stopPrice float64) int {
	riskPoints := stopPrice - entryPrice
	if riskPoints <= 0 {
		return m.config.MinContracts
	}

	riskBudget := m.config.AccountEquity * m.config.MaxRiskPct
	perContract := riskPoints * m.config.MicroContractValue
	if perContract <= 0 {
		return m.config.MinContracts
	}

	size := int(math.Floor(riskBudget / perContract))
	if size < m.config.MinContracts {
		size = m.config.MinContracts
	}
	if size > m.config.MaxContracts {
		size = m.config.MaxContracts
	}
	return size
}

// CheckTradeRisk validates that the dollar risk of a sized trade stays
// within the per-trade cap.
func (m *Manager) CheckTradeRisk(entryPrice, stopPrice float64, contracts int) error {
	riskPoints := stopPrice - entryPrice
	if riskPoints <= 0 {
		return fmt.Errorf("stop %.2f is not above entry %.2f", stopPrice, entryPrice)
	}

	riskDollars := riskPoints * float64(contracts) * m.config.MicroContractValue
	budget := m.config.AccountEquity * m.config.MaxRiskPct
	if riskDollars > budget {
		return fmt.Errorf("trade risk $%.2f exceeds budget $%.2f", riskDollars, budget)
	}
	return nil
}

// DollarPnL converts realized points into dollars for a contract count.
func (m *Manager) DollarPnL(points float64, contracts int) float64 {
	return points * float64(contracts) * m.config.MicroContractValue
}
