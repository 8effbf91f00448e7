package reporting

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// PrintTable renders rows as an ASCII table
func PrintTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
