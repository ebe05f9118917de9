package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"brewhub-system/internal/database/models"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

var headersEN = []string{
	"ID", "Order ID", "Supplier ID", "Roaster ID", "Order Total",
	"Supplier Rate %", "Roaster Rate %", "Supplier Commission",
	"Roaster Commission", "Total Commission", "Status", "Created At",
}

var headersAR = []string{
	"المعرف", "رقم الطلب", "المورد", "المحمصة", "إجمالي الطلب",
	"نسبة المورد %", "نسبة المحمصة %", "عمولة المورد",
	"عمولة المحمصة", "إجمالي العمولة", "الحالة", "تاريخ الإنشاء",
}

var statusAR = map[string]string{
	"pending":   "قيد الانتظار",
	"completed": "مكتمل",
}

func headers(locale Locale) []string {
	if locale == LocaleArabic {
		return headersAR
	}
	return headersEN
}

func localizeStatus(status string, locale Locale) string {
	if locale == LocaleArabic {
		if translated, ok := statusAR[status]; ok {
			return translated
		}
	}
	return status
}

func row(r models.CommissionRecord, locale Locale) []string {
	createdAt := ""
	if r.CreatedAt != nil {
		createdAt = r.CreatedAt.Format(time.RFC3339)
	}
	return []string{
		fmt.Sprintf("%d", r.ID),
		fmt.Sprintf("%d", r.OrderID),
		fmt.Sprintf("%d", r.SupplierID),
		fmt.Sprintf("%d", r.RoasterID),
		r.OrderTotal,
		r.SupplierRate,
		r.RoasterRate,
		r.SupplierCommission,
		r.RoasterCommission,
		r.TotalCommission,
		localizeStatus(r.Status, locale),
		createdAt,
	}
}

// WriteCSV streams the filtered record set as a CSV artifact.
func WriteCSV(w io.Writer, records []models.CommissionRecord, locale Locale) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers(locale)); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(row(r, locale)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteExcel produces an .xlsx artifact with the same columns as the CSV.
func WriteExcel(w io.Writer, records []models.CommissionRecord, locale Locale) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Commissions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for col, header := range headers(locale) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, r := range records {
		for col, val := range row(r, locale) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	if locale == LocaleArabic {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func boolPtr(b bool) *bool {
	return &b
}
