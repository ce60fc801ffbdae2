package loan

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrExportFailed = errors.New("failed to generate loan spreadsheet")

const (
	sheetName  = "Peminjaman"
	dateLayout = "2006-01-02 15:04"
)

var exportHeader = []string{"ID", "Alat", "Jumlah", "Status", "Waktu Pinjam", "Mulai", "Selesai"}

// ExportXLSX writes the current loan history as a spreadsheet.
func (l *Ledger) ExportXLSX(w io.Writer) error {
	loans := l.History()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "D", "D", 14)
	_ = f.SetColWidth(sheetName, "E", "G", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, title := range exportHeader {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, c, title)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)

	for i, loan := range loans {
		row := i + 2
		values := []any{
			loan.ID,
			loan.EquipmentName,
			loan.Quantity,
			string(loan.Status),
			formatTime(loan.CreatedAt),
			formatTime(loan.StartAt),
			formatTime(loan.EndAt),
		}
		for col, v := range values {
			c, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, c, v)
		}
	}

	if err := f.Write(w); err != nil {
		l.log.Error("write loan spreadsheet", zap.Error(err))
		return ErrExportFailed
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
