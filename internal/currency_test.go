package internal

import (
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// nbsp is the thousands separator x/text uses for Swedish and Norwegian.
const nbsp = "\u00a0"

func resetDetectedLocale() {
	detectedLocale = language.Und
}

func TestGetCurrency_Codes(t *testing.T) {
	resetDetectedLocale()
	for _, code := range []string{"SEK", "usd", "Eur", "GBP", "NOK", "JPY", "BRL", "XYZ"} {
		c := GetCurrency(code)
		if len(c.Code) != 3 || c.Code[0] < 'A' || c.Code[0] > 'Z' {
			t.Errorf("GetCurrency(%q).Code = %q, want upper-case", code, c.Code)
		}
		_ = c.Format(1234.5)
		_ = c.FormatRange(10, 20)
	}
}

func TestCurrency_Format(t *testing.T) {
	resetDetectedLocale()

	tests := []struct {
		name   string
		code   string
		amount float64
		want   string
	}{
		{"SEK whole", "SEK", 100, "100 kr"},
		{"SEK thousands", "SEK", 1234, "1" + nbsp + "234 kr"},
		{"SEK cents", "SEK", 45.5, "45,50 kr"},
		{"USD whole", "USD", 1200, "$1,200"},
		{"USD cents", "USD", 15.99, "$15.99"},
		{"USD thousands with cents", "USD", 1234.5, "$1,234.50"},
		{"USD negative", "USD", -490, "$-490"},
		{"EUR whole", "EUR", 100, "100 €"},
		{"EUR cents", "EUR", 9.99, "9,99 €"},
		{"EUR thousands", "EUR", 1234, "1.234 €"},
		{"GBP", "GBP", 1234, "£1,234"},
		{"CHF", "CHF", 100, "100 CHF"},
		{"JPY", "JPY", 1000, "￥1,000"},
		{"BRL", "BRL", 1234, "1.234 R$"},
		{"unknown uses code", "XYZ", 100, "100 XYZ"},
		{"unknown thousands", "XYZ", 1234, "1,234 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCurrency(tt.code).Format(tt.amount); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCurrency_FormatRange(t *testing.T) {
	resetDetectedLocale()

	tests := []struct {
		code     string
		min, max float64
		want     string
	}{
		{"SEK", 100, 150, "100-150 kr"},
		{"SEK", 1000, 1500, "1" + nbsp + "000-1" + nbsp + "500 kr"},
		{"USD", 100, 150, "$100-$150"},
		{"USD", 80.5, 120, "$80.50-$120"},
		{"EUR", 50, 75, "50-75 €"},
		{"XYZ", 10, 20, "10-20 XYZ"},
	}

	for _, tt := range tests {
		if got := GetCurrency(tt.code).FormatRange(tt.min, tt.max); got != tt.want {
			t.Errorf("%s FormatRange(%v, %v) = %q, want %q", tt.code, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestCurrency_FormatDecimalAndOptional(t *testing.T) {
	resetDetectedLocale()
	usd := GetCurrency("USD")

	if got := usd.FormatDecimal(decimal.RequireFromString("433.333")); got != "$433.33" {
		t.Errorf("FormatDecimal = %q, want $433.33", got)
	}
	if got := usd.FormatOptional(nil); got != "-" {
		t.Errorf("FormatOptional(nil) = %q, want -", got)
	}
	if got := usd.FormatOptional(f64(20)); got != "$20" {
		t.Errorf("FormatOptional(20) = %q, want $20", got)
	}
}

func TestGetCurrencyWithLocale(t *testing.T) {
	c := GetCurrencyWithLocale("eur", language.AmericanEnglish)
	if got := c.Format(1234.5); got != "1,234.50 €" {
		t.Errorf("Format = %q, want %q", got, "1,234.50 €")
	}
}

func TestParseCurrencyFromLocale(t *testing.T) {
	tests := []struct {
		locale       string
		wantCurrency string
		wantTag      string
	}{
		{"sv_SE.UTF-8", "SEK", "sv-SE"},
		{"en_US.UTF-8", "USD", "en-US"},
		{"pt_BR.UTF-8", "BRL", "pt-BR"},
		{"de_DE", "EUR", "de-DE"},
		{"de_DE@euro", "EUR", "de-DE"},
		{"en_GB.UTF-8", "GBP", "en-GB"},
		{"C", "", ""},
		{"en", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			gotCurrency, gotTag := parseCurrencyFromLocale(tt.locale)
			if gotCurrency != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", gotCurrency, tt.wantCurrency)
			}
			if tt.wantTag != "" && gotTag.String() != tt.wantTag {
				t.Errorf("tag = %q, want %q", gotTag.String(), tt.wantTag)
			}
		})
	}
}

func TestDetectSystemCurrency(t *testing.T) {
	skipSystemLocale = true
	t.Cleanup(func() {
		skipSystemLocale = false
		resetDetectedLocale()
	})

	tests := []struct {
		name                    string
		lcMonetary, lcAll, lang string
		want                    string
	}{
		{"LC_MONETARY first", "sv_SE.UTF-8", "en_US.UTF-8", "de_DE.UTF-8", "SEK"},
		{"LC_ALL second", "", "en_US.UTF-8", "de_DE.UTF-8", "USD"},
		{"LANG last", "", "", "de_DE.UTF-8", "EUR"},
		{"skips C and POSIX", "C", "POSIX", "nb_NO.UTF-8", "NOK"},
		{"nothing set", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetDetectedLocale()
			t.Setenv("LC_MONETARY", tt.lcMonetary)
			t.Setenv("LC_ALL", tt.lcAll)
			t.Setenv("LANG", tt.lang)

			if got := DetectSystemCurrency(); got != tt.want {
				t.Errorf("DetectSystemCurrency() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSystemCurrency_SetsLocaleForFormatting(t *testing.T) {
	skipSystemLocale = true
	t.Cleanup(func() {
		skipSystemLocale = false
		resetDetectedLocale()
	})
	resetDetectedLocale()
	t.Setenv("LC_MONETARY", "pt_BR.UTF-8")
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "")

	if code := DetectSystemCurrency(); code != "BRL" {
		t.Fatalf("DetectSystemCurrency() = %q, want BRL", code)
	}
	// pt-BR groups thousands with a period, even for a currency whose home locale differs
	if got := GetCurrency("USD").Format(1234); got != "US$1.234" && got != "$1.234" {
		t.Errorf("Format(1234) = %q, want pt-BR grouping", got)
	}
}
