package charts

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	apperrors "housingcli/internal/errors"
)

// PlotlyCDN is the script the chart pages load.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// Placeholder titles for empty selections.
const (
	NoTrendDataTitle = "No data for selected areas"
	NoAreasTitle     = "No areas to display"
	NoYoYDataTitle   = "No YoY data to show"
)

const (
	trendTitle      = "Median sale amount by area"
	heatmapTitle    = "YoY change heatmap (area × month)"
	heatmapColorBar = "YoY"
)

// Trace is one plotly data series.
type Trace struct {
	Type        string       `json:"type"`
	Mode        string       `json:"mode,omitempty"`
	Name        string       `json:"name,omitempty"`
	Orientation string       `json:"orientation,omitempty"`
	X           interface{}  `json:"x,omitempty"`
	Y           interface{}  `json:"y,omitempty"`
	Z           [][]*float64 `json:"z,omitempty"`
	ColorBar    *ColorBar    `json:"colorbar,omitempty"`
	Hover       string       `json:"hovertemplate,omitempty"`
}

// ColorBar titles a heatmap scale.
type ColorBar struct {
	Title Title `json:"title"`
}

// Title is a plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Axis holds the axis settings the reports use.
type Axis struct {
	Title         *Title `json:"title,omitempty"`
	TickPrefix    string `json:"tickprefix,omitempty"`
	TickFormat    string `json:"tickformat,omitempty"`
	CategoryOrder string `json:"categoryorder,omitempty"`
	Type          string `json:"type,omitempty"`
}

// Layout is the plotly figure layout.
type Layout struct {
	Title     Title  `json:"title"`
	HoverMode string `json:"hovermode,omitempty"`
	XAxis     *Axis  `json:"xaxis,omitempty"`
	YAxis     *Axis  `json:"yaxis,omitempty"`
}

// Figure is a complete plotly chart.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

var pageTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
<style>html,body{margin:0;height:100%}#chart{width:100%;height:100vh}</style>
</head>
<body>
<div id="chart"></div>
<script>
var figure = {{.Figure}};
Plotly.newPlot("chart", figure.data, figure.layout, {responsive: true});
</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Script string
	Figure template.JS
}

// WriteFigure renders fig as a standalone HTML page at path.
func WriteFigure(path string, fig Figure) error {
	if fig.Data == nil {
		fig.Data = []Trace{}
	}
	payload, err := json.Marshal(fig)
	if err != nil {
		return apperrors.NewRenderError("failed to encode figure", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewRenderError("failed to create reports directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to create %s", path), err)
	}
	defer f.Close()

	if err := pageTemplate.Execute(f, pageData{
		Title:  fig.Layout.Title.Text,
		Script: PlotlyCDN,
		Figure: template.JS(payload),
	}); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to render %s", path), err)
	}
	return f.Close()
}

// WritePlaceholder writes an empty chart page carrying only a title.
func WritePlaceholder(path, title string) error {
	return WriteFigure(path, Figure{Layout: Layout{Title: Title{Text: title}}})
}
