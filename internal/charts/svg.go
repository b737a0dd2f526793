package charts

import (
	"fmt"
	"html"
	"math"
	"os"
	"path/filepath"
	"strings"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

const (
	svgWidth   = 800
	svgHeight  = 480
	svgLeft    = 90
	svgRight   = 30
	svgTop     = 50
	svgBottom  = 60
	svgYTicks  = 5
	svgXLabels = 6
)

// TrendSVG draws the monthly median sale amount of one area as a static
// line chart. Areas with fewer than MinTrendPoints months are skipped and
// no file is written; the returned bool reports whether the file exists.
func TrendSVG(series []domain.MonthlySummary, area, path string) (bool, error) {
	rows := areaSeries(series, area)
	if len(rows) < MinTrendPoints {
		return false, nil
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if r.MedianSaleAmount == nil {
			continue
		}
		minY = math.Min(minY, *r.MedianSaleAmount)
		maxY = math.Max(maxY, *r.MedianSaleAmount)
	}
	if math.IsInf(minY, 1) {
		minY, maxY = 0, 1
	}
	if minY == maxY {
		minY, maxY = minY*0.9, maxY*1.1
		if minY == maxY {
			maxY = minY + 1
		}
	}

	plotW := float64(svgWidth - svgLeft - svgRight)
	plotH := float64(svgHeight - svgTop - svgBottom)
	xAt := func(i int) float64 {
		return svgLeft + plotW*float64(i)/float64(len(rows)-1)
	}
	yAt := func(v float64) float64 {
		return svgTop + plotH*(1-(v-minY)/(maxY-minY))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`+"\n",
		svgWidth, svgHeight, svgWidth, svgHeight)
	b.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")
	fmt.Fprintf(&b, `<text x="%d" y="28" text-anchor="middle" font-size="16">Median sale amount: %s</text>`+"\n",
		svgWidth/2, html.EscapeString(area))

	// Axes.
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		svgLeft, svgTop, svgLeft, svgHeight-svgBottom)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		svgLeft, svgHeight-svgBottom, svgWidth-svgRight, svgHeight-svgBottom)

	for i := 0; i <= svgYTicks; i++ {
		v := minY + (maxY-minY)*float64(i)/svgYTicks
		y := yAt(v)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ddd"/>`+"\n",
			svgLeft, y, svgWidth-svgRight, y)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end">$%s</text>`+"\n",
			svgLeft-6, y+4, formatAmount(v))
	}

	step := (len(rows) + svgXLabels - 1) / svgXLabels
	for i := 0; i < len(rows); i += step {
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle">%s</text>`+"\n",
			xAt(i), svgHeight-svgBottom+18, rows[i].MonthKey.Format("2006-01"))
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle">Month</text>`+"\n",
		svgLeft+int(plotW)/2, svgHeight-12)
	fmt.Fprintf(&b, `<text x="18" y="%d" text-anchor="middle" transform="rotate(-90 18 %d)">Median sale amount</text>`+"\n",
		svgTop+int(plotH)/2, svgTop+int(plotH)/2)

	// Missing medians break the line.
	var segment []string
	flush := func() {
		if len(segment) > 1 {
			fmt.Fprintf(&b, `<polyline fill="none" stroke="#1f77b4" stroke-width="2" points="%s"/>`+"\n",
				strings.Join(segment, " "))
		}
		segment = segment[:0]
	}
	for i, r := range rows {
		if r.MedianSaleAmount == nil {
			flush()
			continue
		}
		x, y := xAt(i), yAt(*r.MedianSaleAmount)
		segment = append(segment, fmt.Sprintf("%.1f,%.1f", x, y))
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="2.5" fill="#1f77b4"/>`+"\n", x, y)
	}
	flush()
	b.WriteString("</svg>\n")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, apperrors.NewRenderError("failed to create reports directory", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return false, apperrors.NewRenderError(fmt.Sprintf("failed to write %s", path), err)
	}
	return true, nil
}

// formatAmount renders v with thousands separators and no decimals.
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.0f", math.Abs(v))
	var b strings.Builder
	if v < 0 && s != "0" {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
