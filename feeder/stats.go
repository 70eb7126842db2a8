package main

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func (r *relay) printStats(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"source", "lines", "bytes"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	var lines int64
	var bytes uint64
	for _, st := range r.stats {
		table.Append([]string{
			st.source,
			humanize.Comma(st.lines),
			humanize.Bytes(st.bytes),
		})
		lines += st.lines
		bytes += st.bytes
	}

	table.SetFooter([]string{"total", humanize.Comma(lines), humanize.Bytes(bytes)})
	table.Render()
}
