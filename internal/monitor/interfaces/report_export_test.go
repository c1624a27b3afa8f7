package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	monitor "vendfleet/internal/monitor/domain"
)

func sampleStats() []monitor.DailyStat {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []monitor.DailyStat{
		{
			Date:         day,
			MachineID:    "m1",
			TotalRevenue: decimal.RequireFromString("10.50"),
			TotalCost:    decimal.RequireFromString("6.00"),
			TotalProfit:  decimal.RequireFromString("4.50"),
			OrderCount:   3,
			AlertCount:   2,
		},
		{
			Date:         day,
			MachineID:    "m2",
			TotalRevenue: decimal.RequireFromString("2.00"),
			TotalCost:    decimal.RequireFromString("1.00"),
			TotalProfit:  decimal.RequireFromString("1.00"),
			OrderCount:   1,
			AlertCount:   0,
		},
	}
}

func TestBuildDailyReportXLSX(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	codes := map[string]string{"m1": "VM-A001"}

	data, err := BuildDailyReportXLSX(day, sampleStats(), codes, "CNY")
	if err != nil {
		t.Fatalf("BuildDailyReportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	label, err := f.GetCellValue("summary", "A5")
	if err != nil {
		t.Fatalf("read revenue label: %v", err)
	}
	if label != "Total Revenue (CNY)" {
		t.Fatalf("expected currency-labeled revenue, got %q", label)
	}
	revenue, err := f.GetCellValue("summary", "B5")
	if err != nil {
		t.Fatalf("read summary revenue: %v", err)
	}
	if revenue != "12.50" {
		t.Fatalf("expected total revenue 12.50, got %q", revenue)
	}

	code, err := f.GetCellValue("machines", "A2")
	if err != nil {
		t.Fatalf("read machine code: %v", err)
	}
	if code != "VM-A001" {
		t.Fatalf("expected code VM-A001, got %q", code)
	}
	// Unknown ids fall back to the raw id.
	code, err = f.GetCellValue("machines", "A3")
	if err != nil {
		t.Fatalf("read second machine code: %v", err)
	}
	if code != "m2" {
		t.Fatalf("expected raw id m2, got %q", code)
	}
}

func TestMoneyLabelWithoutCurrency(t *testing.T) {
	if got := moneyLabel("Total Revenue", ""); got != "Total Revenue" {
		t.Fatalf("expected plain label, got %q", got)
	}
}

func TestBuildDailyReportPDF(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	data, err := BuildDailyReportPDF(day, sampleStats(), nil, "CNY")
	if err != nil {
		t.Fatalf("BuildDailyReportPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", data[:min(len(data), 8)])
	}
}
