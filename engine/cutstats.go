package engine

import "fmt"

// CutStatistics counts how often each pruning mechanism fired during one
// search. Per-thread; dumped on request via the "cutstats" debug toggle.
type CutStatistics struct {
	TTCutoffs        uint64
	NullMoveCutoffs  uint64
	ReverseFutility  uint64
	FutilityPrunes   uint64
	LateMovePrunes   uint64
	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
	QSeePrunes       uint64
}

func (cs *CutStatistics) add(other *CutStatistics) {
	cs.TTCutoffs += other.TTCutoffs
	cs.NullMoveCutoffs += other.NullMoveCutoffs
	cs.ReverseFutility += other.ReverseFutility
	cs.FutilityPrunes += other.FutilityPrunes
	cs.LateMovePrunes += other.LateMovePrunes
	cs.BetaCutoffs += other.BetaCutoffs
	cs.QStandPatCutoffs += other.QStandPatCutoffs
	cs.QBetaCutoffs += other.QBetaCutoffs
	cs.QSeePrunes += other.QSeePrunes
}

func (cs *CutStatistics) dump(print func(string)) {
	print("info string cut statistics:")
	print(fmt.Sprintf("info string   TT cutoffs: %d", cs.TTCutoffs))
	print(fmt.Sprintf("info string   null-move cutoffs: %d", cs.NullMoveCutoffs))
	print(fmt.Sprintf("info string   reverse futility cutoffs: %d", cs.ReverseFutility))
	print(fmt.Sprintf("info string   futility prunes: %d", cs.FutilityPrunes))
	print(fmt.Sprintf("info string   late move prunes: %d", cs.LateMovePrunes))
	print(fmt.Sprintf("info string   beta cutoffs: %d", cs.BetaCutoffs))
	print(fmt.Sprintf("info string   qsearch stand-pat cutoffs: %d", cs.QStandPatCutoffs))
	print(fmt.Sprintf("info string   qsearch beta cutoffs: %d", cs.QBetaCutoffs))
	print(fmt.Sprintf("info string   qsearch SEE prunes: %d", cs.QSeePrunes))
}
