package pdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

func TestRenderListProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := RenderList(&buf, ListReport{
		Title:   "Customer",
		Columns: []string{"ID", "Name", "Email"},
		Rows: [][]string{
			{"1", "Ana", "ana@techfix.test"},
			{"2", "Luis", "luis@techfix.test"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("output does not start with a PDF header")
	}
}

func TestRenderListEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	err := RenderList(&buf, ListReport{Title: "Repair Order", Columns: []string{"ID"}})
	if err != nil {
		t.Fatalf("render empty report: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("empty report produced no output")
	}
}

func TestRenderRepairReport(t *testing.T) {
	task := &domain.RepairTask{
		ID:           12,
		Title:        "Screen replacement",
		Status:       "done",
		Diagnosis:    "Cracked digitizer",
		Solution:     "Replaced display assembly",
		TimeSpentMin: 90,
		Cost:         120.50,
		Order: &domain.RepairOrder{
			ReportedProblem: "Screen does not respond to touch after a fall.",
			Device: &domain.Device{
				SerialNumber:  "SN-123",
				PhysicalState: "scratched",
				Model: &domain.DeviceModel{
					Name:  "Galaxy S21",
					Brand: &domain.Brand{Name: "Samsung"},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := RenderRepairReport(&buf, task); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("output does not start with a PDF header")
	}
}

// A task with no hydrated order must still render; missing fields fall back
// to placeholders instead of panicking.
func TestRenderRepairReportBareTask(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRepairReport(&buf, &domain.RepairTask{ID: 1, Title: "Diag"}); err != nil {
		t.Fatalf("render bare task: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("bare task produced no output")
	}
}
