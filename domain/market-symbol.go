package domain

import (
	"fmt"
	"strings"
)

// MarketSymbol is a spot pair. OKX names it BASE-QUOTE, e.g. BTC-USDT.
type MarketSymbol struct {
	BaseAsset  string
	QuoteAsset string
}

func NewMarketSymbol(base string, quote string) (*MarketSymbol, error) {
	if base == "" || quote == "" {
		return nil, fmt.Errorf("%w: base and quote must not be empty", ErrInvalidSymbol)
	}
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	if base == quote {
		return nil, fmt.Errorf("%w: base and quote must be different", ErrInvalidSymbol)
	}
	return &MarketSymbol{
		BaseAsset:  base,
		QuoteAsset: quote,
	}, nil
}

// NewMarketSymbolFromString parses an instrument id such as "BTC-USDT".
func NewMarketSymbolFromString(s string) (*MarketSymbol, error) {
	split := strings.Split(s, "-")

	if len(split) != 2 {
		return nil, fmt.Errorf("%w: %q is not BASE-QUOTE", ErrInvalidSymbol, s)
	}

	return NewMarketSymbol(split[0], split[1])
}

func (ms *MarketSymbol) Join(separator string) string {
	return fmt.Sprintf("%s%s%s", ms.BaseAsset, separator, ms.QuoteAsset)
}

// InstID is the OKX instrument id.
func (ms *MarketSymbol) InstID() string {
	return ms.Join("-")
}

func (ms *MarketSymbol) String() string {
	return ms.InstID()
}

func (ms *MarketSymbol) Equal(other *MarketSymbol) bool {
	return ms.BaseAsset == other.BaseAsset && ms.QuoteAsset == other.QuoteAsset
}
