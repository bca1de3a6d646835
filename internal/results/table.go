package results

import (
	"fmt"
	"strings"
)

var tableHeaders = []string{
	"Model", "Hardware", "Chunk", "Batch", "Conc",
	"p50 (ms)", "p99 (ms)", "Tput (emb/s)", "Tput/User", "Power (W)", "Emb/Joule",
}

// RenderTable formats records as a width-aligned markdown table. Absent
// power columns render as "-"; the model is shortened to its final path
// segment.
func RenderTable(records []SummaryRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		model := r.Model
		if idx := strings.LastIndex(model, "/"); idx >= 0 {
			model = model[idx+1:]
		}

		power := "-"
		if r.PowerAvgW != nil {
			power = fmt.Sprintf("%.1f", *r.PowerAvgW)
		}
		embPerJoule := "-"
		if r.EmbPerJoule != nil {
			embPerJoule = fmt.Sprintf("%.2f", *r.EmbPerJoule)
		}

		rows = append(rows, []string{
			model,
			r.Hardware,
			fmt.Sprintf("%d", r.ChunkSize),
			fmt.Sprintf("%d", r.BatchSize),
			fmt.Sprintf("%d", r.Concurrency),
			fmt.Sprintf("%.1f", r.P50LatencyMs),
			fmt.Sprintf("%.1f", r.P99LatencyMs),
			fmt.Sprintf("%.1f", r.ThroughputEmbPerSec),
			fmt.Sprintf("%.1f", r.ThroughputPerUser),
			power,
			embPerJoule,
		})
	}

	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	formatRow := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		return "| " + strings.Join(parts, " | ") + " |"
	}

	var sb strings.Builder
	sb.WriteString(formatRow(tableHeaders))
	sb.WriteByte('\n')

	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	sb.WriteString("|-" + strings.Join(separators, "-|-") + "-|")
	sb.WriteByte('\n')

	for _, row := range rows {
		sb.WriteString(formatRow(row))
		sb.WriteByte('\n')
	}

	return sb.String()
}
