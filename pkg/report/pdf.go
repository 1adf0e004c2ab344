// Package report renders downloadable vehicle health reports as PDF.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"autocare/pkg/diagnosis"
	"autocare/pkg/vitals"
)

// CarInfo is the vehicle the report covers.
type CarInfo struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Odometer int    `json:"odometer"`
}

// Data is everything a report needs. GeneratedAt is injected so output is
// reproducible under test.
type Data struct {
	UserName    string
	UserEmail   string
	Car         CarInfo
	Reading     *vitals.Reading
	Verdict     diagnosis.Verdict
	GeneratedAt time.Time
}

type serviceCenter struct {
	name, city, contact string
}

var serviceCenters = []serviceCenter{
	{"Maruti Suzuki Service Arena", "Delhi", "+91-9876543210"},
	{"Tata Motors Service Hub", "Mumbai", "+91-9988776655"},
	{"Hyundai Authorised Service", "Bangalore", "+91-9123456789"},
	{"Mahindra First Choice", "Chennai", "+91-9000112233"},
}

// FileName builds the suggested download name for a report.
func FileName(car CarInfo, at time.Time) string {
	return fmt.Sprintf("%s_%s_HealthReport_%s.pdf", car.Make, car.Model, at.Format("20060102_150405"))
}

// Generate renders the report and returns the PDF bytes.
func Generate(data Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "AutoCare AI - Vehicle Health Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	heading(pdf, "User Details")
	line(pdf, fmt.Sprintf("Name: %s", data.UserName))
	line(pdf, fmt.Sprintf("Email: %s", data.UserEmail))
	line(pdf, fmt.Sprintf("Generated on: %s", data.GeneratedAt.Format("02-01-2006 15:04")))
	pdf.Ln(4)

	heading(pdf, "Car Details")
	table(pdf,
		[]float64{40, 40, 25, 35},
		[]string{"Make", "Model", "Year", "Odometer (km)"},
		[][]string{{data.Car.Make, data.Car.Model, fmt.Sprintf("%d", data.Car.Year), fmt.Sprintf("%d", data.Car.Odometer)}},
	)
	pdf.Ln(4)

	heading(pdf, "Diagnostic Readings")
	table(pdf, []float64{65, 45}, []string{"Parameter", "Value"}, readingRows(data.Reading))
	pdf.Ln(4)

	heading(pdf, "Diagnosis Summary")
	if len(data.Verdict.Alerts) == 0 {
		line(pdf, "No critical issues detected. Car health is normal.")
	} else {
		for _, a := range data.Verdict.Alerts {
			line(pdf, "! "+a)
		}
	}
	pdf.Ln(4)

	if len(data.Verdict.Prediction.Probabilities) > 0 {
		heading(pdf, "Prediction Probabilities")
		rows := make([][]string, 0, len(data.Verdict.Prediction.Probabilities))
		for _, p := range data.Verdict.Prediction.Probabilities {
			rows = append(rows, []string{p.Label, fmt.Sprintf("%.1f%%", p.Probability*100)})
		}
		table(pdf, []float64{80, 35}, []string{"Class", "Probability"}, rows)
		pdf.Ln(4)
	}

	heading(pdf, "Recommended Maintenance")
	if len(data.Verdict.Alerts) > 0 {
		line(pdf, "- Schedule a service visit within 48 hours.")
		line(pdf, "- Inspect brakes, coolant, and battery system immediately.")
	}
	line(pdf, "- Oil & coolant top-up every 5,000 km.")
	line(pdf, "- Brake inspection every 10,000 km.")
	pdf.Ln(4)

	heading(pdf, "Nearby Service Centers")
	centerRows := make([][]string, 0, len(serviceCenters))
	for _, sc := range serviceCenters {
		centerRows = append(centerRows, []string{sc.name, sc.city, sc.contact})
	}
	table(pdf, []float64{62, 42, 42}, []string{"Service Center", "City", "Contact"}, centerRows)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on: %s", data.GeneratedAt.Format("02-01-2006 15:04")), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 5, "This report is auto-generated by AutoCare AI. For official diagnostics, contact your nearest service center.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func table(pdf *gofpdf.Fpdf, widths []float64, header []string, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(210, 225, 240)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func readingRows(r *vitals.Reading) [][]string {
	if r == nil {
		return nil
	}
	type entry struct {
		name, unit string
		value      *float64
	}
	entries := []entry{
		{"Odometer", " km", r.OdometerKM},
		{"Engine Temperature", " C", r.EngineTempC},
		{"Battery Voltage", " V", r.BatteryVoltageV},
		{"Oil Pressure", " kPa", r.OilPressureKPa},
		{"Front Brake Wear", " mm", r.BrakePadWearMMFront},
		{"Rear Brake Wear", " mm", r.BrakePadWearMMRear},
		{"Suspension Health", " %", r.SuspensionHealthPct},
		{"Tire Pressure (FL)", " psi", r.TirePressurePSIFL},
		{"Coolant Level", " %", r.CoolantLevelPct},
		{"Brake Fluid Level", " %", r.BrakeFluidLevelPct},
		{"Transmission Fluid Temp", " C", r.TransmissionFluidTempC},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if e.value == nil {
			continue
		}
		rows = append(rows, []string{e.name, fmt.Sprintf("%.2f%s", *e.value, e.unit)})
	}
	return rows
}
