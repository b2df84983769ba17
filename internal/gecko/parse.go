package gecko

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Amount is a defensively parsed USD quantity. The provider serializes the
// same field as a JSON number, a quoted string (sometimes with thousands
// separators), null, or placeholder text; any unparseable value resolves to
// zero instead of failing the whole document.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseUSD(str, 0))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a plain float64
func (a Amount) Float64() float64 {
	return float64(a)
}

// ParseUSD parses a USD magnitude from provider text, stripping currency
// symbols and thousands separators. Non-numeric or empty input resolves to
// the supplied default.
func ParseUSD(s string, defaultValue float64) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
