package output

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Formatter renders simulation results in one output format
type Formatter interface {
	Name() string
	FormatSimulation(result *domain.SimulationResult) ([]byte, error)
	FormatBatch(batch *domain.BatchResult) ([]byte, error)
	FormatRates(rs *domain.RateSet) ([]byte, error)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{Pretty: true},
	"csv":     CSVFormatter{},
}

// GetFormatter returns the formatter registered under name
func GetFormatter(name string) (Formatter, error) {
	f, ok := formatters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (expected one of %s)", name, strings.Join(FormatNames(), ", "))
	}
	return f, nil
}

// FormatNames lists the registered format names in sorted order
func FormatNames() []string {
	names := lo.Keys(formatters)
	slices.Sort(names)
	return names
}

// FormatCurrency formats an amount in dirhams with thousands separators
func FormatCurrency(amount decimal.Decimal) string {
	return groupThousands(amount.StringFixed(2)) + " MAD"
}

// FormatPercentage formats a fraction (0.0448) as a percentage (4.48%)
func FormatPercentage(fraction decimal.Decimal) string {
	return fraction.Shift(2).StringFixed(2) + "%"
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
