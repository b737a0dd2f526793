// Package charts renders the report artifacts of a pipeline run.
//
// Interactive charts are self-contained HTML pages that load plotly.js from
// its CDN: a median price trend for the busiest areas, a bar chart of the
// areas with the lowest total monthly cost and a YoY heatmap of area by
// month. When a selection is empty the page is still written, as a titled
// placeholder, so the reports directory always has the same set of files.
//
// The trend of the top area is also drawn as a static SVG. PNG copies of
// the HTML charts can be produced through headless Chrome; a failed
// rasterization is reported but never fails the run.
package charts
