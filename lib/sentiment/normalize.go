package sentiment

import (
	"strings"
	"unicode"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

var labels = map[string]types.Label{
	"bullish": types.Bullish,
	"bearish": types.Bearish,
	"mixed":   types.Mixed,
}

// Normalize reduces a model answer to a label by looking only at its first word.
// Anything unrecognised, the empty string included, is Undetermined.
func Normalize(raw string) types.Label {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return types.Undetermined
	}
	word := strings.ToLower(strings.TrimRightFunc(fields[0], unicode.IsPunct))
	if label, ok := labels[word]; ok {
		return label
	}
	return types.Undetermined
}
