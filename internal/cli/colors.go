// Package cli holds the ANSI helpers used by the banner and the console log encoder.
package cli

import (
	"fmt"
	"os"
	"strings"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
)

// RGB is a 24-bit terminal color.
type RGB struct {
	R, G, B uint8
}

var (
	RelayTeal  = RGB{0, 190, 170}
	RelayAmber = RGB{255, 170, 0}
)

// Mix returns the color at position t (0..1) on the line from c to other.
func (c RGB) Mix(other RGB, t float64) RGB {
	t = min(max(t, 0), 1)
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return RGB{lerp(c.R, other.R), lerp(c.G, other.G), lerp(c.B, other.B)}
}

func (c RGB) escape() string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

// NO_COLOR is read once at startup.
var disableColor = noColor()

func noColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Enabled reports whether ANSI colors should be emitted.
func Enabled() bool {
	return !disableColor
}

// Style wraps text in an ANSI code.
func Style(text string, code string) string {
	if disableColor {
		return text
	}
	return code + text + Reset
}

// Gradient colors each rune of text, fading from start to end.
func Gradient(text string, start, end RGB) string {
	if disableColor {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		var t float64
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		b.WriteString(start.Mix(end, t).escape())
		b.WriteRune(r)
	}
	b.WriteString(Reset)
	return b.String()
}

func CheckMark() string   { return Style("✔", Green) }
func Arrow() string       { return Style("➜", Blue) }
func WarningSign() string { return Style("⚠", Yellow) }
