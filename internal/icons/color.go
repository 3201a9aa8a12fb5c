package icons

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

// Color parsers are tried in order; the first one that recognizes the input
// wins. An input no parser accepts is a configuration error.
var colorParsers = []func(string) (string, bool){
	parseHexColor,
	parseNamedColor,
}

// NormalizeColor resolves a 3/6-digit hex string or a CSS color name to a
// lowercase "#rrggbb" value.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	for _, parse := range colorParsers {
		if hex, ok := parse(color); ok {
			return hex, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", color)
}

func parseHexColor(color string) (string, bool) {
	digits := strings.ToLower(strings.TrimPrefix(color, "#"))
	if len(digits) != 3 && len(digits) != 6 {
		return "", false
	}
	for _, c := range digits {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	if len(digits) == 3 {
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = digits[i]
			expanded[2*i+1] = digits[i]
		}
		digits = string(expanded)
	}
	return "#" + digits, true
}

func parseNamedColor(color string) (string, bool) {
	rgba, ok := colornames.Map[strings.ToLower(color)]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B), true
}
