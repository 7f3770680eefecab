package cli

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// reportSection is one titled table of the inspect report.
type reportSection struct {
	title   string
	headers []string
	numeric []int // zero-based columns holding numbers, aligned right
	rows    [][]string
	counted string // footer noun, e.g. "entries"; no footer when empty
}

// render draws the section with rounded borders. Short rows are padded and
// a section without rows shows a single "(none)" row.
func (s reportSection) render() string {
	width := len(s.headers)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(s.title)
	tw.AppendHeader(padRow(s.headers, width))

	if len(s.rows) == 0 {
		tw.AppendRow(padRow([]string{"(none)"}, width))
	}
	for _, row := range s.rows {
		tw.AppendRow(padRow(row, width))
	}
	if s.counted != "" {
		tw.AppendFooter(padRow([]string{strconv.Itoa(len(s.rows)) + " " + s.counted}, width))
	}

	configs := make([]table.ColumnConfig, 0, len(s.numeric))
	for _, col := range s.numeric {
		if col < 0 || col >= width {
			continue
		}
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func padRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// renderReport joins sections with a blank line between them.
func renderReport(sections ...reportSection) string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if r := s.render(); r != "" {
			out = append(out, r)
		}
	}
	return strings.Join(out, "\n\n")
}
