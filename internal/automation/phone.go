package automation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoDigits is returned when a phone number input contains no digits at
// all. Such a request never reaches the page.
var ErrNoDigits = errors.New("no digits found in number")

// usCountryCode is prepended to bare 10-digit numbers.
const usCountryCode = "1"

// NormalizeNumber strips formatting from a phone number and returns the
// digit string in country-code form: "(555) 123-4567" → "15551234567".
// Numbers already carrying a leading country code pass through unchanged.
func NormalizeNumber(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return "", ErrNoDigits
	}
	if len(d) == 10 {
		d = usCountryCode + d
	}
	return d, nil
}

// DialURL builds the deep link that opens the page's dialer with the number
// prefilled. The number rides in the fragment query as an E.164-style
// "+<digits>", percent-encoded.
func DialURL(baseURL, digits string) string {
	return fmt.Sprintf("%s/u/0/calls?a=nc,%s", strings.TrimRight(baseURL, "/"), url.QueryEscape("+"+digits))
}
