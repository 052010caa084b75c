package domain

import "github.com/google/btree"

type Side string

const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

const depthViewDegree = 32

// DepthView is a price keyed view of one book side with one level per
// price. It is built by replaying the side in order: a later level at the
// same price replaces the earlier one and a zero size removes the price.
type DepthView struct {
	levels *btree.BTreeG[PriceLevel]
}

func NewDepthView(side Side, levels []PriceLevel) *DepthView {
	less := func(a, b PriceLevel) bool { return a.Price < b.Price }
	if side == SideBid {
		less = func(a, b PriceLevel) bool { return a.Price > b.Price }
	}

	v := &DepthView{
		levels: btree.NewG(depthViewDegree, less),
	}
	for _, level := range levels {
		v.Set(level)
	}

	return v
}

// Set replaces the level at level.Price, or removes it when the size is zero.
func (v *DepthView) Set(level PriceLevel) {
	if level.Size == 0 {
		v.levels.Delete(level)
		return
	}
	v.levels.ReplaceOrInsert(level)
}

func (v *DepthView) Len() int {
	return v.levels.Len()
}

// Levels returns the levels best price first.
func (v *DepthView) Levels() []PriceLevel {
	out := make([]PriceLevel, 0, v.levels.Len())
	v.levels.Ascend(func(level PriceLevel) bool {
		out = append(out, level)
		return true
	})

	return out
}
