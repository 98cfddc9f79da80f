package reporting

import (
	"os"
	"strings"
	"testing"

	"blockwatch/internal/analysis"
)

func TestGenerateSessionReport(t *testing.T) {
	// Setup stats
	stats := analysis.NewPipelineStats()

	// Simulate some traffic
	for i := 0; i < 3; i++ {
		stats.Received()
	}
	stats.Record(analysis.OutcomeFiltered)
	stats.Record(analysis.OutcomePrivate)
	stats.Record(analysis.OutcomeAlerted)
	stats.GeoUnknown()
	stats.SetLastAlert("ALERT: Blocked traffic detected from 203.0.113.7 (Unknown) targeting port 3389 (RDP (Remote Desktop Protocol)) over TCP.")

	// Generate report
	filename, err := GenerateSessionReport(stats, "html", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}

	// Read content
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	html := string(content)

	// Verify content
	if !strings.Contains(html, "blockwatch Session Report") {
		t.Error("Report missing title")
	}
	if !strings.Contains(html, "<strong>Datagrams Received:</strong> 3") {
		t.Error("Report missing received count")
	}
	if !strings.Contains(html, "<tr><td>alerted</td><td>1</td></tr>") {
		t.Error("Report missing alerted row")
	}
	if !strings.Contains(html, "<tr><td>error</td><td>0</td></tr>") {
		t.Error("Report missing zero row for errors")
	}
	if !strings.Contains(html, "203.0.113.7") {
		t.Error("Report missing last alert")
	}
}

func TestGenerateSessionReport_NoAlerts(t *testing.T) {
	filename, err := GenerateSessionReport(analysis.NewPipelineStats(), "html", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	if !strings.Contains(string(content), "No alerts triggered during this session.") {
		t.Error("Report missing empty-session notice")
	}
}

func TestGenerateSessionReport_UnsupportedFormat(t *testing.T) {
	if _, err := GenerateSessionReport(analysis.NewPipelineStats(), "pdf", t.TempDir()); err == nil {
		t.Error("expected error for unsupported format")
	}
}
