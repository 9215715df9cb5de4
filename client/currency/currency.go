// Package currency converts and formats display prices. The catalog is
// priced in USD; conversion is a client display concern only and uses a
// fixed rate table, never a live feed.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/angelmondragon/storefront/pkg/config"
)

// Currency identifies a supported display currency.
type Currency string

const (
	USD Currency = "USD"
	INR Currency = "INR"
)

// Fixed conversion rates from USD. INR matches the rate the storefront has
// always displayed rather than any live market value.
var rates = map[Currency]decimal.Decimal{
	USD: decimal.NewFromInt(1),
	INR: decimal.RequireFromString("83.50"),
}

var symbols = map[Currency]string{
	USD: "$",
	INR: "₹",
}

var oneHundred = decimal.NewFromInt(100)

// Prices are grouped the Indian way (1,23,456.78) to match the original
// display locale.
var printer = message.NewPrinter(language.MustParse("en-IN"))

// Supported reports whether the currency has a conversion rate.
func Supported(cur Currency) bool {
	_, ok := rates[normalize(cur)]
	return ok
}

// Convert turns a USD cent amount into units of the target currency.
func Convert(usdCents int64, cur Currency) (decimal.Decimal, error) {
	rate, ok := rates[normalize(cur)]
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported currency %q", cur)
	}
	usd := decimal.NewFromInt(usdCents).Div(oneHundred)
	return usd.Mul(rate), nil
}

// ConvertAmount converts a USD amount (whole currency units) to the target
// currency.
func ConvertAmount(usd decimal.Decimal, cur Currency) (decimal.Decimal, error) {
	rate, ok := rates[normalize(cur)]
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported currency %q", cur)
	}
	return usd.Mul(rate), nil
}

// Format renders an amount with the currency symbol, locale digit grouping,
// and exactly two fraction digits.
func Format(amount decimal.Decimal, cur Currency) (string, error) {
	cur = normalize(cur)
	symbol, ok := symbols[cur]
	if !ok {
		return "", fmt.Errorf("unsupported currency %q", cur)
	}
	value, _ := amount.Round(2).Float64()
	return printer.Sprintf("%s%v", symbol, number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	)), nil
}

// FormatUSDCents converts a USD cent amount and formats it in one step.
func FormatUSDCents(usdCents int64, cur Currency) (string, error) {
	amount, err := Convert(usdCents, cur)
	if err != nil {
		return "", err
	}
	return Format(amount, cur)
}

// FormatTotal renders a USD cart total in the configured display currency.
func FormatTotal(usd decimal.Decimal, cfg config.ClientConfig) (string, error) {
	cur := Currency(cfg.DisplayCurrency)
	amount, err := ConvertAmount(usd, cur)
	if err != nil {
		return "", err
	}
	return Format(amount, cur)
}

func normalize(cur Currency) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(cur))))
}
