package strategy

import (
	"testing"
	"time"

	"gapfade-bot/internal/analysis"
	"gapfade-bot/internal/marketdata"
)

func validBlock() analysis.SuspensionBlock {
	return analysis.SuspensionBlock{High: 20100, Low: 19900, CE: 20000, Valid: true}
}

func bar(high, close float64) marketdata.Candle {
	return marketdata.Candle{
		Time:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Open:  close,
		High:  high,
		Low:   close - 10,
		Close: close,
	}
}

// TestNewGapFadeModelDefaults tests the zero-value fallbacks.
func TestNewGapFadeModelDefaults(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})

	config := model.Config()
	if config.StopBufferPoints != 7.5 {
		t.Errorf("Expected default stop buffer 7.5, got %f", config.StopBufferPoints)
	}
	if config.ADXThreshold != 20 {
		t.Errorf("Expected default ADX threshold 20, got %f", config.ADXThreshold)
	}
	if config.EqualLowsTolerance != 2.0 {
		t.Errorf("Expected default equal-lows tolerance 2.0, got %f", config.EqualLowsTolerance)
	}
	if config.LiquidityLookback != 100 {
		t.Errorf("Expected default liquidity lookback 100, got %d", config.LiquidityLookback)
	}
}

// TestFindEntryCE tests the rally-to-CE-and-reject trigger.
func TestFindEntryCE(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	intraday := []marketdata.Candle{bar(20010, 19990)}

	entry := model.FindEntry(intraday, validBlock(), nil)
	if entry == nil {
		t.Fatal("Expected a CE entry")
	}
	if entry.Kind != EntryCE {
		t.Errorf("Expected entry kind %q, got %q", EntryCE, entry.Kind)
	}
	if entry.Price != 19990 {
		t.Errorf("Expected entry at close 19990, got %f", entry.Price)
	}
}

// TestFindEntryNoRejection tests that a close above the CE does not
// trigger.
func TestFindEntryNoRejection(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	intraday := []marketdata.Candle{bar(20010, 20005)}

	if entry := model.FindEntry(intraday, validBlock(), nil); entry != nil {
		t.Errorf("Expected no entry when closing above CE, got %+v", entry)
	}
}

// TestFindEntryFVG tests the FVG boundary rejection trigger when the CE
// is untouched.
func TestFindEntryFVG(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	fvgs := []analysis.FVG{{Top: 19960, Bottom: 19950}}
	intraday := []marketdata.Candle{bar(19955, 19940)}

	entry := model.FindEntry(intraday, validBlock(), fvgs)
	if entry == nil {
		t.Fatal("Expected an FVG entry")
	}
	if entry.Kind != EntryFVG {
		t.Errorf("Expected entry kind %q, got %q", EntryFVG, entry.Kind)
	}
}

// TestFindEntryEmptySeries tests the empty-input guard.
func TestFindEntryEmptySeries(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	if entry := model.FindEntry(nil, validBlock(), nil); entry != nil {
		t.Errorf("Expected no entry on empty series, got %+v", entry)
	}
}

// TestCalculateStop tests that the stop sits above the block high by the
// configured buffer.
func TestCalculateStop(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{StopBufferPoints: 7.5})
	if stop := model.CalculateStop(validBlock()); stop != 20107.5 {
		t.Errorf("Expected stop 20107.5, got %f", stop)
	}
}

// TestCalculateTargets tests that each tier only takes levels below the
// entry and that TP2 and TP3 take the highest candidates.
func TestCalculateTargets(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	nwog := 19950.0

	targets := model.CalculateTargets(19990, &nwog,
		[]float64{19900, 19940, 20020},
		[]float64{19850, 19920, 20050},
	)

	if targets.TP1 == nil || *targets.TP1 != 19950 {
		t.Errorf("Expected TP1 19950, got %v", targets.TP1)
	}
	if targets.TP2 == nil || *targets.TP2 != 19940 {
		t.Errorf("Expected TP2 19940, got %v", targets.TP2)
	}
	if targets.TP3 == nil || *targets.TP3 != 19920 {
		t.Errorf("Expected TP3 19920, got %v", targets.TP3)
	}
}

// TestCalculateTargetsAboveEntry tests that levels above the entry never
// qualify.
func TestCalculateTargetsAboveEntry(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	nwog := 20050.0

	targets := model.CalculateTargets(19990, &nwog, []float64{20020}, []float64{20010})
	if targets.TP1 != nil || targets.TP2 != nil || targets.TP3 != nil {
		t.Errorf("Expected no targets below entry, got %+v", targets)
	}
	if targets.Identified() {
		t.Error("Expected targets not identified without TP1")
	}
}

// TestEvaluateChecklist tests the all-pass and failing-flag paths.
func TestEvaluateChecklist(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})
	entry := &Entry{Price: 19990, Kind: EntryCE}

	checklist := model.EvaluateChecklist(validBlock(), true, true, entry, 2, true, true, true)
	if !checklist.AllPass() {
		t.Errorf("Expected checklist to pass, got %+v", checklist)
	}

	checklist = model.EvaluateChecklist(validBlock(), true, true, nil, 2, true, true, true)
	if checklist.AllPass() {
		t.Error("Expected checklist to fail without an entry")
	}

	checklist = model.EvaluateChecklist(validBlock(), true, true, entry, 0, true, true, true)
	if checklist.PositionSizeValid {
		t.Error("Expected position size flag to fail at zero contracts")
	}
}

// TestGenerateSignalInvalidBlock tests that a short history produces no
// signal.
func TestGenerateSignalInvalidBlock(t *testing.T) {
	model := NewGapFadeModel(GapFadeConfig{})

	daily := []marketdata.Candle{bar(20010, 19990), bar(20010, 19990)}
	if signal := model.GenerateSignal(daily, daily, daily); signal != nil {
		t.Errorf("Expected no signal on invalid block, got %+v", signal)
	}
}
