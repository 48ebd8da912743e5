package internal

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats bill amounts for one ISO currency in one locale.
type Currency struct {
	Code    string // "SEK", "USD", "EUR"
	symbol  string
	prefix  bool
	printer *message.Printer
}

// symbolOverrides replaces x/text narrow symbols that read badly in a table.
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// prefixCurrencies are written before the amount. x/text does not expose CLDR
// symbol placement, so the list is maintained by hand.
var prefixCurrencies = map[string]bool{
	"USD": true, "GBP": true, "JPY": true, "CAD": true, "AUD": true,
	"MXN": true, "HKD": true, "SGD": true, "NZD": true, "ZAR": true,
}

// homeLocale is the formatting locale used for a currency when the system
// locale is unknown.
var homeLocale = map[string]language.Tag{
	"SEK": language.Swedish,
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"BRL": language.BrazilianPortuguese,
	"MXN": language.LatinAmericanSpanish,
	"INR": language.MustParse("en-IN"),
	"PLN": language.Polish,
	"CZK": language.Czech,
	"NZD": language.MustParse("en-NZ"),
	"ZAR": language.MustParse("en-ZA"),
}

// detectedLocale is set by DetectSystemCurrency and preferred for formatting.
var detectedLocale language.Tag

// GetCurrency returns the Currency for a code, formatted in the detected system
// locale, else the currency's home locale, else English. Unknown codes format
// like USD but print the code as their symbol.
func GetCurrency(code string) Currency {
	code = strings.ToUpper(code)

	tag := language.English
	if detectedLocale != language.Und {
		tag = detectedLocale
	} else if t, ok := homeLocale[code]; ok {
		tag = t
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency formatted in an explicit locale.
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(code)
	printer := message.NewPrinter(tag)

	symbol, ok := symbolOverrides[code]
	if !ok {
		if unit, err := currency.ParseISO(code); err == nil {
			symbol = printer.Sprint(currency.NarrowSymbol(unit))
		} else {
			symbol = code
		}
	}

	return Currency{
		Code:    code,
		symbol:  symbol,
		prefix:  prefixCurrencies[code],
		printer: printer,
	}
}

// DetectSystemCurrency guesses the user's currency from the OS locale and
// remembers the locale for formatting. Returns "" when nothing usable is found.
func DetectSystemCurrency() string {
	locale := detectSystemLocale()
	if locale == "" {
		return ""
	}

	code, tag := parseCurrencyFromLocale(locale)
	if code == "" {
		return ""
	}
	detectedLocale = tag
	return code
}

// parseCurrencyFromLocale maps "sv_SE.UTF-8" to ("SEK", sv-SE). Locales without
// a region yield "".
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	base, _, _ := strings.Cut(locale, ".")
	base, _, _ = strings.Cut(base, "@")

	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return "", language.Und
	}

	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return "", language.Und
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}
	return unit.String(), tag
}

func (c Currency) number(amount float64) string {
	if amount == math.Trunc(amount) {
		return c.printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
	}
	return c.printer.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func (c Currency) withSymbol(s string) string {
	if c.prefix {
		return c.symbol + s
	}
	return s + " " + c.symbol
}

// Format renders an amount with its symbol. Whole amounts drop the decimals,
// everything else shows cents.
func (c Currency) Format(amount float64) string {
	return c.withSymbol(c.number(amount))
}

// FormatRange renders min-max, e.g. for a varying bill's observed amounts.
func (c Currency) FormatRange(min, max float64) string {
	if c.prefix {
		return c.symbol + c.number(min) + "-" + c.symbol + c.number(max)
	}
	return c.number(min) + "-" + c.number(max) + " " + c.symbol
}

func (c Currency) FormatDecimal(d decimal.Decimal) string {
	return c.Format(d.Round(2).InexactFloat64())
}

// FormatOptional renders "-" for a missing amount.
func (c Currency) FormatOptional(amount *float64) string {
	if amount == nil {
		return "-"
	}
	return c.Format(*amount)
}
