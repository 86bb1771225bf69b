package main

import (
	"encoding/json"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
)

// column describes one table column.
type column struct {
	title string
	right bool
}

const shortIDLength = 8

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// renderTable draws rows under columns; short rows are padded with blanks.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// positioned pairs a record with its 1-based insertion position.
type positioned struct {
	Position int `json:"position"`
	catalog.Record
}

var recordColumns = func() []column {
	cols := []column{{title: "#", right: true}, {title: "ID"}}
	for _, h := range catalog.Headers {
		cols = append(cols, column{title: h})
	}
	// duration and price
	cols[4].right = true
	cols[6].right = true
	return cols
}()

func recordTable(records []positioned, f *catalog.Formatter) string {
	rows := make([][]string, 0, len(records))
	for _, p := range records {
		rows = append(rows, append([]string{itoa(p.Position), shortID(p.ID)}, f.Row(p.Record)...))
	}
	return renderTable(recordColumns, rows)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
