package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// noTradesNote is written into the summary when a run produced nothing.
const noTradesNote = "No trades matched rules in this period. This is normal - the model is selective."

// Summary aggregates a trade log into headline statistics.
type Summary struct {
	Trades          int
	Wins            int
	Losses          int
	WinRate         float64
	TotalPnLPoints  float64
	TotalPnLDollars float64
	AvgPnLPoints    float64
	AvgPnLDollars   float64
	MaxWinPoints    float64
	MaxLossPoints   float64
	SMTConfirmedPct float64
	Note            string
}

// Summarize computes summary statistics for a gap-fade trade log.
func Summarize(trades []Trade) Summary {
	if len(trades) == 0 {
		return Summary{Note: noTradesNote}
	}

	s := Summary{Trades: len(trades)}
	smtCount := 0
	s.MaxWinPoints = trades[0].PnLPoints
	s.MaxLossPoints = trades[0].PnLPoints

	for _, t := range trades {
		if t.PnLPoints > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
		s.TotalPnLPoints += t.PnLPoints
		s.TotalPnLDollars += t.PnLDollars
		if t.PnLPoints > s.MaxWinPoints {
			s.MaxWinPoints = t.PnLPoints
		}
		if t.PnLPoints < s.MaxLossPoints {
			s.MaxLossPoints = t.PnLPoints
		}
		if t.SMTConfirmed {
			smtCount++
		}
	}

	n := float64(len(trades))
	s.WinRate = float64(s.Wins) / n
	s.AvgPnLPoints = s.TotalPnLPoints / n
	s.AvgPnLDollars = s.TotalPnLDollars / n
	s.SMTConfirmedPct = float64(smtCount) / n
	return s
}

// Rows renders the summary as ordered key/value pairs for the CSV
// writer and the log output.
func (s Summary) Rows() [][2]string {
	if s.Trades == 0 {
		return [][2]string{
			{"trades", "0"},
			{"wins", "0"},
			{"losses", "0"},
			{"win_rate", "0"},
			{"total_pnl_pts", "0"},
			{"total_pnl_dollars", "0"},
			{"avg_pnl_pts", "0"},
			{"avg_pnl_dollars", "0"},
			{"note", s.Note},
		}
	}
	return [][2]string{
		{"trades", strconv.Itoa(s.Trades)},
		{"wins", strconv.Itoa(s.Wins)},
		{"losses", strconv.Itoa(s.Losses)},
		{"win_rate", formatFloat(s.WinRate, 4)},
		{"total_pnl_pts", formatFloat(s.TotalPnLPoints, 2)},
		{"total_pnl_dollars", formatFloat(s.TotalPnLDollars, 2)},
		{"avg_pnl_pts", formatFloat(s.AvgPnLPoints, 2)},
		{"avg_pnl_dollars", formatFloat(s.AvgPnLDollars, 2)},
		{"max_win_pts", formatFloat(s.MaxWinPoints, 2)},
		{"max_loss_pts", formatFloat(s.MaxLossPoints, 2)},
		{"smt_confirmed_pct", formatFloat(s.SMTConfirmedPct, 4)},
	}
}

// SweepSummary aggregates a sweep trade log.
type SweepSummary struct {
	Trades   int
	Wins     int
	Losses   int
	WinRate  float64
	TotalPnL float64
	AvgPnL   float64
	Note     string
}

// SummarizeSweep computes summary statistics for a sweep trade log.
func SummarizeSweep(trades []SweepTrade) SweepSummary {
	if len(trades) == 0 {
		return SweepSummary{Note: noTradesNote}
	}

	s := SweepSummary{Trades: len(trades)}
	for _, t := range trades {
		if t.PnLPoints > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
		s.TotalPnL += t.PnLPoints
	}
	s.WinRate = float64(s.Wins) / float64(len(trades))
	s.AvgPnL = s.TotalPnL / float64(len(trades))
	return s
}

// Rows renders the sweep summary as ordered key/value pairs.
func (s SweepSummary) Rows() [][2]string {
	if s.Trades == 0 {
		return [][2]string{
			{"trades", "0"},
			{"wins", "0"},
			{"losses", "0"},
			{"win_rate", "0"},
			{"total_pnl", "0"},
			{"avg_pnl", "0"},
			{"note", s.Note},
		}
	}
	return [][2]string{
		{"trades", strconv.Itoa(s.Trades)},
		{"wins", strconv.Itoa(s.Wins)},
		{"losses", strconv.Itoa(s.Losses)},
		{"win_rate", formatFloat(s.WinRate, 4)},
		{"total_pnl", formatFloat(s.TotalPnL, 2)},
		{"avg_pnl", formatFloat(s.AvgPnL, 2)},
	}
}

// WriteTradesCSV writes the gap-fade trade log.
func WriteTradesCSV(path string, trades []Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating trades file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"day", "entry_time", "entry_type", "entry_price", "stop",
		"tp1", "tp2", "tp3", "size", "smt",
		"exit_time", "exit_reason", "pnl_points", "pnl_dollars",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		row := []string{
			t.Day.Format("2006-01-02"),
			t.EntryTime.Format("2006-01-02 15:04:05"),
			string(t.EntryKind),
			formatFloat(t.EntryPrice, 2),
			formatFloat(t.Stop, 2),
			formatOptional(t.TP1),
			formatOptional(t.TP2),
			formatOptional(t.TP3),
			strconv.Itoa(t.Contracts),
			strconv.FormatBool(t.SMTConfirmed),
			t.ExitTime.Format("2006-01-02 15:04:05"),
			t.ExitReason,
			formatFloat(t.PnLPoints, 2),
			formatFloat(t.PnLDollars, 2),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteSweepTradesCSV writes the sweep trade log.
func WriteSweepTradesCSV(path string, trades []SweepTrade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating trades file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"day", "direction", "entry_time", "entry", "stop", "target",
		"exit_time", "exit_reason", "pnl",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		row := []string{
			t.Day.Format("2006-01-02"),
			string(t.Side),
			t.EntryTime.Format("2006-01-02 15:04:05"),
			formatFloat(t.Entry, 2),
			formatFloat(t.Stop, 2),
			formatFloat(t.Target, 2),
			t.ExitTime.Format("2006-01-02 15:04:05"),
			t.ExitReason,
			formatFloat(t.PnLPoints, 2),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteSummaryCSV writes ordered key/value summary rows.
func WriteSummaryCSV(path string, rows [][2]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating summary file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, row := range rows {
		if err := w.Write([]string{row[0], row[1]}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, 2)
}
