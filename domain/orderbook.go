package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type OrderBookSource string

const (
	OrderBookSource_Provider       OrderBookSource = "Provider"
	OrderBookSource_LocalOrderBook OrderBookSource = "LocalOrderBook"
)

// OrderBookSnapshot is a depth limited copy of a book handed to readers.
type OrderBookSnapshot struct {
	Source    OrderBookSource `json:"source"`
	Timestamp uint64          `json:"ts"`
	Asks      []PriceLevel    `json:"asks"`
	Bids      []PriceLevel    `json:"bids"`
}

// OrderBook is the local view of one instrument's book.
//
// Asks are kept in ascending and bids in descending price order. The book
// holds no lock: a single owner drives every mutation.
type OrderBook struct {
	Asks []PriceLevel
	Bids []PriceLevel
	// Milliseconds since epoch, taken from the snapshot. Deltas leave it as is.
	Timestamp uint64
}

type snapshotResponse struct {
	Code *string            `json:"code"`
	Msg  *string            `json:"msg"`
	Data *[]json.RawMessage `json:"data"`
}

type snapshotData struct {
	Asks *[]PriceLevel `json:"asks"`
	Bids *[]PriceLevel `json:"bids"`
	Ts   *string       `json:"ts"`
}

type orderBookUpdate struct {
	Asks *[]PriceLevel `json:"asks"`
	Bids *[]PriceLevel `json:"bids"`
}

// NewOrderBookFromSnapshot builds a book from a REST snapshot envelope
// ({code, msg, data:[...]}). Only the first data object is used. Either a
// fully valid book is returned or none is.
func NewOrderBookFromSnapshot(raw []byte) (*OrderBook, error) {
	var response snapshotResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	switch {
	case response.Code == nil:
		return nil, fmt.Errorf("%w: missing field code", ErrDeserialization)
	case response.Msg == nil:
		return nil, fmt.Errorf("%w: missing field msg", ErrDeserialization)
	case response.Data == nil:
		return nil, fmt.Errorf("%w: missing field data", ErrDeserialization)
	}
	if len(*response.Data) == 0 {
		return nil, fmt.Errorf("%w: code=%q msg=%q", ErrEmptyData, *response.Code, *response.Msg)
	}

	return NewOrderBookFromSnapshotData((*response.Data)[0])
}

// NewOrderBookFromSnapshotData builds a book from a single snapshot data
// object ({asks, bids, ts}).
func NewOrderBookFromSnapshotData(raw []byte) (*OrderBook, error) {
	var data snapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	switch {
	case data.Asks == nil:
		return nil, fmt.Errorf("%w: missing field asks", ErrDeserialization)
	case data.Bids == nil:
		return nil, fmt.Errorf("%w: missing field bids", ErrDeserialization)
	case data.Ts == nil:
		return nil, fmt.Errorf("%w: missing field ts", ErrDeserialization)
	}

	// one leading plus sign is allowed, a minus sign is not
	ts, err := strconv.ParseUint(strings.TrimPrefix(*data.Ts, "+"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}

	ob := &OrderBook{
		Asks:      *data.Asks,
		Bids:      *data.Bids,
		Timestamp: ts,
	}
	if err := ob.sortOrderBook(); err != nil {
		return nil, err
	}

	return ob, nil
}

// ApplyUpdate appends the asks and bids of a delta ({asks, bids}) to the
// book and re-sorts it.
//
// Entries are appended as they are: a level already present at the same
// price is not replaced and a zero size does not remove anything, so
// applying the same delta twice doubles its levels. Use Canonical for a
// per-price view.
//
// If the combined book fails validation the appended entries stay in the
// book unsorted. Callers must discard the book and re-snapshot on error, or
// use WithUpdate.
func (ob *OrderBook) ApplyUpdate(raw []byte) error {
	var update orderBookUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		return fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	switch {
	case update.Asks == nil:
		return fmt.Errorf("%w: missing field asks", ErrDeserialization)
	case update.Bids == nil:
		return fmt.Errorf("%w: missing field bids", ErrDeserialization)
	}

	ob.Asks = append(ob.Asks, *update.Asks...)
	ob.Bids = append(ob.Bids, *update.Bids...)

	return ob.sortOrderBook()
}

// WithUpdate applies the delta to a copy of the book and returns the copy.
// The receiver is never modified, so the previous valid state survives a
// malformed delta.
func (ob *OrderBook) WithUpdate(raw []byte) (*OrderBook, error) {
	next := ob.Clone()
	if err := next.ApplyUpdate(raw); err != nil {
		return nil, err
	}
	return next, nil
}

func (ob *OrderBook) Clone() *OrderBook {
	return &OrderBook{
		Asks:      append([]PriceLevel(nil), ob.Asks...),
		Bids:      append([]PriceLevel(nil), ob.Bids...),
		Timestamp: ob.Timestamp,
	}
}

// BestAsk returns the lowest ask, if any.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	if len(ob.Asks) == 0 {
		return PriceLevel{}, false
	}
	return ob.Asks[0], true
}

// BestBid returns the highest bid, if any.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	if len(ob.Bids) == 0 {
		return PriceLevel{}, false
	}
	return ob.Bids[0], true
}

// Spread returns best ask minus best bid and the same value as a percentage
// of the best bid. ok is false when either side is empty.
func (ob *OrderBook) Spread() (abs, pct float64, ok bool) {
	ask, okAsk := ob.BestAsk()
	bid, okBid := ob.BestBid()
	if !okAsk || !okBid {
		return 0, 0, false
	}

	abs = ask.Price - bid.Price
	if bid.Price != 0 {
		pct = abs / bid.Price * 100
	}
	return abs, pct, true
}

func (ob *OrderBook) TakeSnapshot(limit int) *OrderBookSnapshot {
	return &OrderBookSnapshot{
		Source:    OrderBookSource_LocalOrderBook,
		Timestamp: ob.Timestamp,
		Asks:      limitDepth(append([]PriceLevel(nil), ob.Asks...), limit),
		Bids:      limitDepth(append([]PriceLevel(nil), ob.Bids...), limit),
	}
}

// TakeCanonicalSnapshot is TakeSnapshot over the de-duplicated view.
func (ob *OrderBook) TakeCanonicalSnapshot(limit int) *OrderBookSnapshot {
	asks, bids := ob.Canonical()
	return &OrderBookSnapshot{
		Source:    OrderBookSource_LocalOrderBook,
		Timestamp: ob.Timestamp,
		Asks:      limitDepth(asks.Levels(), limit),
		Bids:      limitDepth(bids.Levels(), limit),
	}
}

// Canonical folds each side into one level per price.
func (ob *OrderBook) Canonical() (asks, bids *DepthView) {
	return NewDepthView(SideAsk, ob.Asks), NewDepthView(SideBid, ob.Bids)
}

func limitDepth(depth []PriceLevel, limit int) []PriceLevel {
	if limit > 0 && len(depth) > limit {
		return depth[:limit]
	}

	return depth
}

// sortOrderBook validates every price, then sorts asks ascending and bids
// descending. Nothing is sorted when validation fails.
func (ob *OrderBook) sortOrderBook() error {
	for _, side := range [][]PriceLevel{ob.Asks, ob.Bids} {
		for _, level := range side {
			if math.IsNaN(level.Price) || math.IsInf(level.Price, 0) {
				return ErrInvalidPriceData
			}
		}
	}

	// stable: same-price levels keep arrival order, DepthView relies on it
	sort.SliceStable(ob.Asks, func(i, j int) bool {
		return ob.Asks[i].Price < ob.Asks[j].Price
	})
	sort.SliceStable(ob.Bids, func(i, j int) bool {
		return ob.Bids[i].Price > ob.Bids[j].Price
	})

	return nil
}
