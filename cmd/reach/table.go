package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// optionTable collects taxonomy rows for go-pretty. Columns listed in numeric
// are right aligned.
type optionTable struct {
	headers []string
	numeric map[int]bool
	rows    []table.Row
	footer  table.Row
}

func newOptionTable(headers []string, numeric ...int) *optionTable {
	t := &optionTable{headers: headers, numeric: make(map[int]bool, len(numeric))}
	for _, col := range numeric {
		t.numeric[col] = true
	}
	return t
}

func (t *optionTable) add(cells ...string) {
	t.rows = append(t.rows, t.row(cells))
}

// total sets a footer row, typically the summed audience.
func (t *optionTable) total(cells ...string) {
	t.footer = t.row(cells)
}

func (t *optionTable) row(cells []string) table.Row {
	row := make(table.Row, len(t.headers))
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

func (t *optionTable) render() string {
	if len(t.rows) == 0 {
		return "(none)"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(t.headers))
	configs := make([]table.ColumnConfig, len(t.headers))
	for i, h := range t.headers {
		header[i] = h
		align := text.AlignLeft
		if t.numeric[i] {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.AppendRows(t.rows)
	if t.footer != nil {
		tw.AppendFooter(t.footer)
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
