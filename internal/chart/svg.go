package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/chartcard/internal/model"
)

const (
	svgPad          = 24.0
	svgHeaderHeight = 64.0
	svgLabelHeight  = 28.0
	svgSwitchWidth  = 56.0
	svgSwitchHeight = 24.0
	svgTooltipH     = 28.0
	svgMuted        = "#6E6E6E"
	svgBorder       = "#E4E4E7"
)

// RenderSVG writes the scene as a standalone SVG card. Plot coordinates are offset by the
// card padding and header.
func RenderSVG(w io.Writer, s Scene) error {
	plotX := svgPad
	plotY := svgPad + svgHeaderHeight
	totalW := s.Dims.Width + 2*svgPad
	totalH := plotY + s.Dims.Height + svgLabelHeight + svgPad

	var b bytes.Buffer
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(totalW), num(totalH), num(totalW), num(totalH))
	fmt.Fprintf(&b, "<rect width=\"%s\" height=\"%s\" rx=\"12\" fill=\"white\" stroke=\"%s\"/>\n",
		num(totalW), num(totalH), svgBorder)

	fmt.Fprintf(&b, "<text x=\"%s\" y=\"%s\" font-size=\"16\" font-weight=\"600\">%s</text>\n",
		num(svgPad), num(svgPad+16), escape(s.Title))
	if s.Description != "" {
		fmt.Fprintf(&b, "<text x=\"%s\" y=\"%s\" font-size=\"12\" fill=\"%s\">%s</text>\n",
			num(svgPad), num(svgPad+36), svgMuted, escape(s.Description))
	}
	writeSwitch(&b, s, totalW)

	fmt.Fprintf(&b, "<g transform=\"translate(%s,%s)\">\n", num(plotX), num(plotY))
	switch s.Kind {
	case KindBar:
		writeBars(&b, s)
	default:
		writeLine(&b, s)
	}
	if s.Tooltip != nil {
		writeTooltip(&b, s.Tooltip)
	}
	b.WriteString("</g>\n")

	labelY := plotY + s.Dims.Height + svgLabelHeight*0.7
	for _, l := range s.Labels {
		fmt.Fprintf(&b, "<text x=\"%s\" y=\"%s\" font-size=\"11\" fill=\"%s\" text-anchor=\"middle\">%s</text>\n",
			num(plotX+l.X), num(labelY), svgMuted, escape(l.Text))
	}
	b.WriteString("</svg>\n")

	_, err := w.Write(b.Bytes())
	return err
}

func writeSwitch(b *bytes.Buffer, s Scene, totalW float64) {
	periods := model.Periods()
	x := totalW - svgPad - svgSwitchWidth*float64(len(periods))
	for _, p := range periods {
		fill, text := "white", svgMuted
		if p == s.Period {
			fill, text = s.Color, "white"
		}
		fmt.Fprintf(b, "<rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" rx=\"6\" fill=\"%s\" stroke=\"%s\"/>\n",
			num(x), num(svgPad), num(svgSwitchWidth), num(svgSwitchHeight), escape(fill), svgBorder)
		fmt.Fprintf(b, "<text x=\"%s\" y=\"%s\" font-size=\"12\" fill=\"%s\" text-anchor=\"middle\">%s</text>\n",
			num(x+svgSwitchWidth/2), num(svgPad+16), escape(text), p.Title())
		x += svgSwitchWidth
	}
}

func writeLine(b *bytes.Buffer, s Scene) {
	if len(s.Points) == 0 {
		return
	}
	coords := make([]string, len(s.Points))
	for i, p := range s.Points {
		coords[i] = num(p.X) + "," + num(p.Y)
	}
	fmt.Fprintf(b, "<polyline fill=\"none\" stroke=\"%s\" stroke-width=\"2\" points=\"%s\"/>\n",
		escape(s.Color), strings.Join(coords, " "))
	for i, p := range s.Points {
		r := "4"
		if i == s.Hovered {
			r = "6"
		}
		fmt.Fprintf(b, "<circle cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"%s\"/>\n",
			num(p.X), num(p.Y), r, escape(s.Color))
	}
}

func writeBars(b *bytes.Buffer, s Scene) {
	for i, bar := range s.Bars {
		opacity := "0.8"
		if i == s.Hovered {
			opacity = "1"
		}
		fmt.Fprintf(b, "<rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" rx=\"4\" fill=\"%s\" fill-opacity=\"%s\"/>\n",
			num(bar.X), num(bar.Y), num(bar.Width), num(bar.Height), escape(s.Color), opacity)
	}
}

func writeTooltip(b *bytes.Buffer, t *Tooltip) {
	fmt.Fprintf(b, "<g class=\"tooltip\"><rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" rx=\"4\" fill=\"#18181B\"/>",
		num(t.X), num(t.Y), num(t.Width), num(svgTooltipH))
	fmt.Fprintf(b, "<text x=\"%s\" y=\"%s\" font-size=\"11\" fill=\"white\" text-anchor=\"middle\">%s</text></g>\n",
		num(t.X+t.Width/2), num(t.Y+svgTooltipH*0.65), escape(t.Text))
}

func escape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	out := fmt.Sprintf("%.2f", nonNegative(v))
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}
