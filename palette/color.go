package palette

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"FractalAnimator/misc"
)

// ParseColor reads "#rrggbb" or a decimal "r,g,b" triple. Decimal channels are range checked.
func ParseColor(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, misc.NewConfigError("colors", "bad hex color %q: %s", s, err)
		}
		r, g, b := c.RGB255()
		return RGB{R: int(r), G: int(g), B: int(b)}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, misc.NewConfigError("colors", "color %q is neither #rrggbb nor r,g,b", s)
	}
	var channels [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return RGB{}, misc.NewConfigError("colors", "color %q has a non integer channel", s)
		}
		if !inByte(v) {
			return RGB{}, misc.NewConfigError("colors", "color %q has a channel outside [0,255]", s)
		}
		channels[i] = v
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

func ParseColors(values []string) ([]RGB, error) {
	colors := make([]RGB, 0, len(values))
	for _, v := range values {
		c, err := ParseColor(v)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}
