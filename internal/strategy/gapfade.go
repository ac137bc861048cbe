package strategy

import (
	"time"

	"gapfade-bot/internal/analysis"
	"gapfade-bot/internal/marketdata"
)

// GapFadeConfig configures the bearish-on-a-gap-up model.
type GapFadeConfig struct {
	StopBufferPoints   float64   // points above the block high for the hard stop
	ADXThreshold       float64   // spring filter cutoff
	SMTLookback        int       // bars for divergence comparison
	WickRatio          float64   // lower wick significance ratio
	EqualLowsTolerance float64   // points for liquidity clustering
	MinGapPoints       float64   // minimum FVG size
	LiquidityLookback  int       // intraday bars scanned for equal lows
	FibLevels          []float64 // gradient fractions (eighths + quadrants)
}

// GapFadeModel implements the "bearish on a gap up" rule set: sell short
// into rallies within a bearish daily framework.
type GapFadeModel struct {
	config GapFadeConfig
	fvgs   *analysis.FVGDetector
}

// NewGapFadeModel creates the model with sane fallbacks for zero-valued
// config fields.
func NewGapFadeModel(config GapFadeConfig) *GapFadeModel {
	if config.StopBufferPoints <= 0 {
		config.StopBufferPoints = 7.5
	}
	if config.ADXThreshold <= 0 {
		config.ADXThreshold = 20
	}
	if config.SMTLookback <= 0 {
		config.SMTLookback = 20
	}
	if config.WickRatio <= 0 {
		config.WickRatio = 0.5
	}
	if config.EqualLowsTolerance <= 0 {
		config.EqualLowsTolerance = 2.0
	}
	if config.LiquidityLookback <= 0 {
		config.LiquidityLookback = 100
	}
	return &GapFadeModel{
		config: config,
		fvgs:   analysis.NewFVGDetector(config.MinGapPoints),
	}
}

// Config returns the effective model configuration.
func (m *GapFadeModel) Config() GapFadeConfig {
	return m.config
}

// DetectFVGs finds bearish fair value gaps in the intraday series.
func (m *GapFadeModel) DetectFVGs(intraday []marketdata.Candle) []analysis.FVG {
	return m.fvgs.Detect(intraday)
}

// FindEntry checks whether the latest intraday bar rallied into the CE
// or an FVG boundary and closed back below it, the short trigger of the
// rule set.
func (m *GapFadeModel) FindEntry(intraday []marketdata.Candle, block analysis.SuspensionBlock, fvgs []analysis.FVG) *Entry {
	if len(intraday) == 0 {
		return nil
	}

	last := intraday[len(intraday)-1]

	if block.Valid && last.High >= block.CE && last.Close < block.CE {
		return &Entry{Time: last.Time, Price: last.Close, Kind: EntryCE}
	}

	for _, fvg := range fvgs {
		if last.High >= fvg.Bottom && last.Close < fvg.Bottom {
			return &Entry{Time: last.Time, Price: last.Close, Kind: EntryFVG}
		}
	}
	return nil
}

// CalculateStop places the hard stop above the suspension block high
// plus the configured buffer.
func (m *GapFadeModel) CalculateStop(block analysis.SuspensionBlock) float64 {
	return block.High + m.config.StopBufferPoints
}

// CalculateTargets builds the three-tier ladder. Each tier only gets a
// level that sits below the entry price; TP2 and TP3 take the highest
// qualifying candidates so the nearest liquidity is hit first.
func (m *GapFadeModel) CalculateTargets(entryPrice float64, nwog *float64, sellsideLevels, gradientLevels []float64) Targets {
	var targets Targets

	if nwog != nil && *nwog < entryPrice {
		targets.TP1 = Float64Ptr(*nwog)
	}
	if lvl, ok := highestBelow(sellsideLevels, entryPrice); ok {
		targets.TP2 = Float64Ptr(lvl)
	}
	if lvl, ok := highestBelow(gradientLevels, entryPrice); ok {
		targets.TP3 = Float64Ptr(lvl)
	}
	return targets
}

// EvaluateChecklist assembles the pre-trade checklist flags.
func (m *GapFadeModel) EvaluateChecklist(
	block analysis.SuspensionBlock,
	biasBearish, smtConfirmed bool,
	entry *Entry,
	positionSize int,
	stopDefined, targetsIdentified, springPass bool,
) Checklist {
	return Checklist{
		SuspensionBlockValid: block.Valid,
		DailyBiasBearish:     biasBearish,
		SMTDivergence:        smtConfirmed,
		EntryAtFVGOrCE:       entry != nil,
		PositionSizeValid:    positionSize >= 1,
		StopDefined:          stopDefined,
		TargetsIdentified:    targetsIdentified,
		SpringFilterPass:     springPass,
	}
}

// GenerateSignal runs the full rule evaluation against the daily
// framework and the current intraday series. All of block validity,
// bearish bias, SMT confirmation, spring filter and an entry trigger
// are required; otherwise no signal is produced.
func (m *GapFadeModel) GenerateSignal(daily, confirmDaily, intraday []marketdata.Candle) *Signal {
	block := analysis.IdentifySuspensionBlock(daily)
	if !block.Valid {
		return nil
	}

	bias := analysis.DailyBiasBearish(daily, block)
	smt := analysis.SMTDivergenceBearish(daily, confirmDaily, m.config.SMTLookback)
	fvgs := m.DetectFVGs(intraday)
	entry := m.FindEntry(intraday, block, fvgs)
	springPass := analysis.SpringFilter(daily, m.config.ADXThreshold)

	if !bias || !smt || !springPass || entry == nil {
		return nil
	}

	var nwog *float64
	if gap, ok := analysis.NWOG(daily); ok {
		nwog = Float64Ptr(gap)
	}
	sellside := analysis.FindSellsideLiquidity(intraday, m.config.LiquidityLookback, m.config.EqualLowsTolerance)
	gradients := analysis.GradientLevels(analysis.GradeWicks(daily, m.config.WickRatio, m.config.FibLevels))

	targets := m.CalculateTargets(entry.Price, nwog, sellside, gradients)
	stop := m.CalculateStop(block)

	checklist := m.EvaluateChecklist(block, bias, smt, entry, 1, true, targets.Identified(), springPass)

	return &Signal{
		Side:      SideShort,
		Entry:     *entry,
		Stop:      stop,
		Targets:   targets,
		Checklist: checklist,
		Timestamp: time.Now(),
	}
}

func highestBelow(levels []float64, price float64) (float64, bool) {
	best := 0.0
	found := false
	for _, lvl := range levels {
		if lvl < price && (!found || lvl > best) {
			best = lvl
			found = true
		}
	}
	return best, found
}
