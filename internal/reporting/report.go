package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blockwatch/internal/analysis"
)

// GenerateSessionReport writes a summary of the session's counters into dir.
// Currently supports "html" format.
func GenerateSessionReport(stats *analysis.PipelineStats, format, dir string) (string, error) {
	if format != "html" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	now := time.Now()
	timestamp := now.Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("report_%s.html", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	snap := stats.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>blockwatch Session Report - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>blockwatch Session Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> %s</p>
        <p><strong>Started:</strong> %s</p>
        <p><strong>Uptime:</strong> %s</p>
        <p><strong>Datagrams Received:</strong> %d</p>
        <p><strong>Alerts Without Location:</strong> %d</p>
    </div>

    <h2>Datagrams by Outcome</h2>
    <table>
        <thead>
            <tr>
                <th>Outcome</th>
                <th>Datagrams</th>
            </tr>
        </thead>
        <tbody>
`, timestamp, now.Format(time.RFC1123), snap.Started.Format(time.RFC1123),
		snap.Uptime().Truncate(time.Second), snap.Received, snap.GeoUnknown)

	for _, o := range analysis.Outcomes {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td>%d</td></tr>\n", o, snap.Outcomes[o])
	}

	b.WriteString(`        </tbody>
    </table>

    <h2>Last Alert</h2>
`)

	if snap.LastAlert == "" {
		b.WriteString("    <p>No alerts triggered during this session.</p>\n")
	} else {
		fmt.Fprintf(&b, "    <p class=\"alert\">%s</p>\n", html.EscapeString(snap.LastAlert))
	}

	b.WriteString(`</body>
</html>`)

	if _, err := file.WriteString(b.String()); err != nil {
		return "", err
	}

	return filename, nil
}
