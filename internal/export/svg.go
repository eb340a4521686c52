package export

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// ParticlesToSVG renders a particle frame as an SVG scatter at domain
// scale. Fill color encodes density relative to rest: blue for rarefied,
// green near rest, red for compressed.
func ParticlesToSVG(particles []fluid.Particle, width, height, restDensity float64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0.5" y="0.5" width="%.1f" height="%.1f" fill="none" stroke="#333333"/>
`, width, height, width, height, width-1, height-1))

	for _, p := range particles {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, p.X, p.Y, densityFill(p.Density, restDensity)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func densityFill(density, rest float64) string {
	dev := 0.0
	if rest > 0 {
		dev = (density - rest) / rest
	}
	t := (dev + 1) / 2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return colorful.Hsv(240*(1-t), 0.85, 0.95).Hex()
}

// SeriesToSVG plots one metric series as an SVG polyline, step index on
// the x axis.
func SeriesToSVG(name string, values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="8" y="16" fill="#888888" font-family="monospace" font-size="12">%s</text>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, name, strokeColor))

	stepX := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
