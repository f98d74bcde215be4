package sections

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/expense-search/internal/domain/entity"
)

// currencySymbols maps ISO currency codes to their display symbol. Codes
// without a symbol render after the amount instead.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"INR": "₹",
	"KRW": "₩",
	"BRL": "R$",
}

// FormatDisplayName renders an identity with the display-name to login to
// empty fallback chain.
func FormatDisplayName(d entity.PersonalDetails) string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Login
}

// FormatMerchant blanks the merchant placeholders the backend writes for
// partially created transactions.
func FormatMerchant(merchant string) string {
	if merchant == entity.MerchantPartialPlaceholder || merchant == entity.MerchantDefaultPlaceholder {
		return ""
	}
	return merchant
}

// FormatAmount renders an amount in minor units as a display string with
// its currency symbol, "$54.00" or "-€2.50". Currencies without a known
// symbol render as "54.00 XYZ".
func FormatAmount(minorUnits int64, currency string) string {
	amount := decimal.New(minorUnits, -2)

	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		if currency == "" {
			return amount.StringFixed(2)
		}
		return amount.StringFixed(2) + " " + currency
	}
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// yearOf extracts the four-digit year prefix of a date string, empty when
// the date is too short to carry one.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
