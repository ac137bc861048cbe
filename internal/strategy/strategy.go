package strategy

import "time"

// Side is the trade direction.
type Side string

const (
	SideShort Side = "short"
	SideLong  Side = "long"
)

// EntryKind identifies which structure the entry traded against.
type EntryKind string

const (
	EntryCE  EntryKind = "ce"  // rejection at the suspension block midpoint
	EntryFVG EntryKind = "fvg" // rejection at a fair value gap boundary
)

// Entry is a proposed trade entry.
type Entry struct {
	Time  time.Time
	Price float64
	Kind  EntryKind
}

// Targets holds the three-tier take-profit ladder. A nil tier means no
// qualifying level exists below the entry.
type Targets struct {
	TP1 *float64 // new week opening gap
	TP2 *float64 // sellside liquidity cluster
	TP3 *float64 // wick gradient level
}

// Identified reports whether the first tier has a level attached.
func (t Targets) Identified() bool {
	return t.TP1 != nil
}

// Checklist records the pre-trade conditions of the rule set. All flags
// must pass before a discretionary trader would take the trade.
type Checklist struct {
	SuspensionBlockValid bool `json:"suspension_block_valid"`
	DailyBiasBearish     bool `json:"daily_bias_bearish"`
	SMTDivergence        bool `json:"smt_divergence"`
	EntryAtFVGOrCE       bool `json:"entry_at_fvg_or_ce"`
	PositionSizeValid    bool `json:"position_size_valid"`
	StopDefined          bool `json:"stop_defined"`
	TargetsIdentified    bool `json:"targets_identified"`
	SpringFilterPass     bool `json:"spring_filter_pass"`
}

// AllPass reports whether every checklist item passed.
func (c Checklist) AllPass() bool {
	return c.SuspensionBlockValid && c.DailyBiasBearish && c.SMTDivergence &&
		c.EntryAtFVGOrCE && c.PositionSizeValid && c.StopDefined &&
		c.TargetsIdentified && c.SpringFilterPass
}

// Signal is a fully specified trade setup.
type Signal struct {
	Side      Side
	Entry     Entry
	Stop      float64
	Targets   Targets
	Checklist Checklist
	Timestamp time.Time
}

// Float64Ptr returns a pointer to v. Convenience for optional targets.
func Float64Ptr(v float64) *float64 {
	return &v
}
