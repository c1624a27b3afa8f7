package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	monitor "vendfleet/internal/monitor/domain"
)

// BuildDailyReportPDF renders a minimal PDF for one day's stats. codes maps
// machine ids to display codes; unknown ids fall back to the raw id. currency
// labels the money columns and may be empty.
func BuildDailyReportPDF(date time.Time, stats []monitor.DailyStat, codes map[string]string, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Operations Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", date.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Machines: %d", len(stats)))
	pdf.Ln(8)

	totals := sumStats(stats)
	pdf.Cell(0, 6, fmt.Sprintf("%s: %s", moneyLabel("Total Revenue", currency), totals.revenue.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("%s: %s", moneyLabel("Total Cost", currency), totals.cost.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("%s: %s", moneyLabel("Total Profit", currency), totals.profit.StringFixed(2)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Machine", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, moneyLabel("Revenue", currency), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, moneyLabel("Cost", currency), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, moneyLabel("Profit", currency), "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Orders", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Alerts", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, stat := range stats {
		pdf.CellFormat(30, 6, machineCode(codes, stat.MachineID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, stat.TotalRevenue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, stat.TotalCost.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, stat.TotalProfit.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", stat.OrderCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", stat.AlertCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyReportXLSX renders a minimal XLSX for one day's stats.
func BuildDailyReportXLSX(date time.Time, stats []monitor.DailyStat, codes map[string]string, currency string) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	machineSheet := "machines"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(machineSheet)

	totals := sumStats(stats)
	_ = f.SetCellValue(summarySheet, "A1", "Daily Operations Report")
	_ = f.SetCellValue(summarySheet, "A3", "Date")
	_ = f.SetCellValue(summarySheet, "B3", date.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A4", "Machines")
	_ = f.SetCellValue(summarySheet, "B4", len(stats))
	_ = f.SetCellValue(summarySheet, "A5", moneyLabel("Total Revenue", currency))
	_ = f.SetCellValue(summarySheet, "B5", totals.revenue.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A6", moneyLabel("Total Cost", currency))
	_ = f.SetCellValue(summarySheet, "B6", totals.cost.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A7", moneyLabel("Total Profit", currency))
	_ = f.SetCellValue(summarySheet, "B7", totals.profit.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A8", "Total Orders")
	_ = f.SetCellValue(summarySheet, "B8", totals.orders)
	_ = f.SetCellValue(summarySheet, "A9", "Total Alerts")
	_ = f.SetCellValue(summarySheet, "B9", totals.alerts)

	_ = f.SetCellValue(machineSheet, "A1", "Machine")
	_ = f.SetCellValue(machineSheet, "B1", moneyLabel("Revenue", currency))
	_ = f.SetCellValue(machineSheet, "C1", moneyLabel("Cost", currency))
	_ = f.SetCellValue(machineSheet, "D1", moneyLabel("Profit", currency))
	_ = f.SetCellValue(machineSheet, "E1", "Orders")
	_ = f.SetCellValue(machineSheet, "F1", "Alerts")
	for i, stat := range stats {
		row := i + 2
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("A%d", row), machineCode(codes, stat.MachineID))
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("B%d", row), stat.TotalRevenue.StringFixed(2))
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("C%d", row), stat.TotalCost.StringFixed(2))
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("D%d", row), stat.TotalProfit.StringFixed(2))
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("E%d", row), stat.OrderCount)
		_ = f.SetCellValue(machineSheet, fmt.Sprintf("F%d", row), stat.AlertCount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type statTotals struct {
	revenue decimal.Decimal
	cost    decimal.Decimal
	profit  decimal.Decimal
	orders  int
	alerts  int
}

func sumStats(stats []monitor.DailyStat) statTotals {
	totals := statTotals{revenue: decimal.Zero, cost: decimal.Zero, profit: decimal.Zero}
	for _, stat := range stats {
		totals.revenue = totals.revenue.Add(stat.TotalRevenue)
		totals.cost = totals.cost.Add(stat.TotalCost)
		totals.profit = totals.profit.Add(stat.TotalProfit)
		totals.orders += stat.OrderCount
		totals.alerts += stat.AlertCount
	}
	return totals
}

func moneyLabel(name, currency string) string {
	if currency == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, currency)
}

func machineCode(codes map[string]string, machineID string) string {
	if code, ok := codes[machineID]; ok && code != "" {
		return code
	}
	return machineID
}
