package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"housingcli/pkg/contracts/domain"
)

// DefaultSummaryRows is how many ranked areas the summary shows.
const DefaultSummaryRows = 10

// Summary is what the pipeline command reports after a run.
type Summary struct {
	RunID    string
	Input    string
	Month    time.Time
	Fallback bool
	Rows     []domain.AffordabilityRow
	// Limit caps the table; zero means DefaultSummaryRows.
	Limit    int
	Warnings []string
	Outputs  []string
	Duration time.Duration
}

var summaryHeaders = []string{"#", "Area", "Median price", "Sales", "Total monthly", "Cash to close", "Front-end", "Back-end", "DTI"}

// RenderSummary formats the run summary for the terminal.
func RenderSummary(s Summary) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Housing affordability"))
	b.WriteString("\n")

	month := "n/a"
	if !s.Month.IsZero() {
		month = s.Month.Format("2006-01")
	}
	if s.Fallback {
		month += " (fallback)"
	}
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("run:     "), s.RunID)
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("input:   "), s.Input)
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("snapshot:"), month)
	if s.Duration > 0 {
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("took:    "), s.Duration.Round(time.Millisecond))
	}
	b.WriteString("\n")

	if len(s.Rows) == 0 {
		b.WriteString(WarningStyle.Render("No areas in the affordability snapshot."))
		b.WriteString("\n")
	} else {
		b.WriteString(renderTable(s.Rows, s.Limit))
		b.WriteString("\n")
		passing := 0
		for i := range s.Rows {
			if s.Rows[i].PassesDTI {
				passing++
			}
		}
		fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(fmt.Sprintf("%d of %d areas pass both DTI caps", passing, len(s.Rows))))
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range s.Warnings {
			b.WriteString(FormatWarning(w))
			b.WriteString("\n")
		}
	}

	if len(s.Outputs) > 0 {
		b.WriteString("\n")
		for _, o := range s.Outputs {
			b.WriteString(FormatSuccess(o))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PrintSummary writes the rendered summary to w.
func PrintSummary(w io.Writer, s Summary) error {
	_, err := io.WriteString(w, RenderSummary(s))
	return err
}

func renderTable(rows []domain.AffordabilityRow, limit int) string {
	if limit <= 0 {
		limit = DefaultSummaryRows
	}
	if limit > len(rows) {
		limit = len(rows)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(summaryHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			style := TableCellStyle
			if col >= 2 && col <= 7 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})

	for i, r := range rows[:limit] {
		dti := ErrorStyle.Render("no")
		if r.PassesDTI {
			dti = SuccessStyle.Render("yes")
		}
		t.Row(
			strconv.Itoa(i+1),
			r.Area,
			FormatMoney(r.MedianPrice),
			strconv.Itoa(r.SalesCount),
			FormatMoney(r.TotalMonthly),
			FormatMoney(r.CashToClose),
			FormatRatio(r.FrontEndRatio),
			FormatRatio(r.BackEndRatio),
			dti,
		)
	}
	return t.Render()
}

// FormatMoney renders a dollar amount rounded to whole dollars with thousands separators.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	sign := ""
	rounded := int64(math.Round(v))
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := strconv.FormatInt(rounded, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}

// FormatRatio renders a ratio as a percentage, "n/a" when unknown.
func FormatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v*100, 'f', 1, 64) + "%"
}
