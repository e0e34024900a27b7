package ui

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table prints rows under header.
func Table(header []string, rows [][]string) {
	fmt.Fprintln(stdout, RenderTable(header, rows))
}

// RenderTable formats rows under header, every column left aligned.
func RenderTable(header []string, rows [][]string) string {
	t := table.NewWriter()
	t.AppendHeader(toRow(header))
	for _, r := range rows {
		t.AppendRow(toRow(r))
	}

	configs := make([]table.ColumnConfig, len(header))
	for i := range header {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft}
	}
	t.SetColumnConfigs(configs)

	return t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
