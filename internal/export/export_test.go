package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"brewhub-system/internal/database/models"
)

func sampleRecords() []models.CommissionRecord {
	created := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	return []models.CommissionRecord{
		{
			ID: 1, TenantID: 1, OrderID: 100, SupplierID: 10, RoasterID: 20,
			OrderTotal: "1000.00", SupplierRate: "5.00", RoasterRate: "3.00",
			SupplierCommission: "50.00", RoasterCommission: "30.00",
			TotalCommission: "80.00", Status: "pending", CreatedAt: &created,
		},
		{
			ID: 2, TenantID: 1, OrderID: 101, SupplierID: 11, RoasterID: 20,
			OrderTotal: "500.00", SupplierRate: "5.00", RoasterRate: "3.00",
			SupplierCommission: "25.00", RoasterCommission: "15.00",
			TotalCommission: "40.00", Status: "completed", CreatedAt: &created,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Run("english headers and values", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, sampleRecords(), LocaleEnglish); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}

		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("reading produced CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want header + 2 records", len(rows))
		}
		if rows[0][0] != "ID" || rows[0][10] != "Status" {
			t.Errorf("unexpected header row: %v", rows[0])
		}
		if rows[1][4] != "1000.00" || rows[1][9] != "80.00" {
			t.Errorf("unexpected first record: %v", rows[1])
		}
		if rows[2][10] != "completed" {
			t.Errorf("status = %s, want completed", rows[2][10])
		}
	})

	t.Run("arabic headers and localized status", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, sampleRecords(), LocaleArabic); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}

		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("reading produced CSV: %v", err)
		}
		if rows[0][0] != "المعرف" {
			t.Errorf("first header = %q, want Arabic ID header", rows[0][0])
		}
		if rows[1][10] != "قيد الانتظار" {
			t.Errorf("pending status = %q, want Arabic translation", rows[1][10])
		}
		// Numbers stay untranslated.
		if rows[1][9] != "80.00" {
			t.Errorf("total = %q, want 80.00", rows[1][9])
		}
	})

	t.Run("empty record set still writes headers", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, nil, LocaleEnglish); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Errorf("lines = %d, want header only", len(lines))
		}
	})
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExcel(&buf, sampleRecords(), LocaleEnglish); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	// xlsx is a zip container.
	if buf.Len() == 0 || !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output does not look like an xlsx archive (%d bytes)", buf.Len())
	}

	var bufAR bytes.Buffer
	if err := WriteExcel(&bufAR, sampleRecords(), LocaleArabic); err != nil {
		t.Fatalf("WriteExcel arabic: %v", err)
	}
	if bufAR.Len() == 0 {
		t.Error("arabic workbook is empty")
	}
}
