package rpc

import "github.com/spooky-finn/go-okx-orderbook/domain"

type ValidationServiceConfig struct {
	AvailableSymbols []string
}

type ValidationService struct {
	config *ValidationServiceConfig
}

func NewValidationService(config *ValidationServiceConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

// IsSupportedSymbol reports whether symbol is one of the maintained books.
func (s *ValidationService) IsSupportedSymbol(symbol *domain.MarketSymbol) bool {
	for _, raw := range s.config.AvailableSymbols {
		available, err := domain.NewMarketSymbolFromString(raw)
		if err != nil {
			continue
		}
		if available.Equal(symbol) {
			return true
		}
	}
	return false
}
