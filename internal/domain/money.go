package domain

import (
	"fmt"
	"math"
)

// Currency enumerates the display currencies supported by the storefront.
type Currency string

const (
	// CurrencyEUR is the canonical currency; all stored amounts are EUR cents.
	CurrencyEUR Currency = "EUR"
	// CurrencyUSD is a display-time projection of the canonical amount.
	CurrencyUSD Currency = "USD"
	// CurrencyGBP is a display-time projection of the canonical amount.
	CurrencyGBP Currency = "GBP"
	// CurrencyCAD is a display-time projection of the canonical amount.
	CurrencyCAD Currency = "CAD"
)

// SupportedCurrencies lists the currencies a visitor may select.
func SupportedCurrencies() []Currency {
	return []Currency{CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyCAD}
}

// ParseCurrency normalises a raw code to a supported currency, falling back to EUR.
func ParseCurrency(raw string) Currency {
	switch Currency(raw) {
	case CurrencyUSD:
		return CurrencyUSD
	case CurrencyGBP:
		return CurrencyGBP
	case CurrencyCAD:
		return CurrencyCAD
	default:
		return CurrencyEUR
	}
}

// RateTable maps a display currency to the factor applied to EUR cents.
type RateTable map[Currency]float64

// SymbolTable maps a display currency to its rendered symbol.
type SymbolTable map[Currency]string

// DefaultRates returns the static conversion table. factor(EUR) is always 1.
func DefaultRates() RateTable {
	return RateTable{
		CurrencyEUR: 1,
		CurrencyUSD: 1.09,
		CurrencyGBP: 0.86,
		CurrencyCAD: 1.47,
	}
}

// DefaultSymbols returns the canonical symbol table.
func DefaultSymbols() SymbolTable {
	return SymbolTable{
		CurrencyEUR: "€",
		CurrencyUSD: "$",
		CurrencyGBP: "£",
		CurrencyCAD: "CA$",
	}
}

// PriceFormatter projects canonical EUR cent amounts into display strings.
// Formatting never mutates stored amounts.
type PriceFormatter struct {
	rates   RateTable
	symbols SymbolTable
}

// NewPriceFormatter builds a formatter from the supplied tables; nil tables
// fall back to the defaults.
func NewPriceFormatter(rates RateTable, symbols SymbolTable) PriceFormatter {
	if rates == nil {
		rates = DefaultRates()
	}
	if symbols == nil {
		symbols = DefaultSymbols()
	}
	return PriceFormatter{rates: rates, symbols: symbols}
}

// FormatPrice renders amountEURCents in the target currency. When overrides
// carries an entry for the target currency, that value is used verbatim as
// cents instead of converting. Negative amounts render with a leading sign
// before the symbol.
func (f PriceFormatter) FormatPrice(amountEURCents int64, currency Currency, overrides map[Currency]int64) string {
	cents, ok := overrides[currency]
	if !ok {
		rate, known := f.rates[currency]
		if !known {
			rate = 1
			currency = CurrencyEUR
		}
		cents = int64(math.Round(float64(amountEURCents) * rate))
	}

	symbol, known := f.symbols[currency]
	if !known {
		symbol = string(currency)
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, cents/100, cents%100)
}

// Convert returns the cent amount FormatPrice would display, without rendering.
func (f PriceFormatter) Convert(amountEURCents int64, currency Currency) int64 {
	rate, known := f.rates[currency]
	if !known {
		return amountEURCents
	}
	return int64(math.Round(float64(amountEURCents) * rate))
}
