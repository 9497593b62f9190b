// Package report renders booking exports as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ByeongIn-K/goat-server/internal/classify"
	"github.com/ByeongIn-K/goat-server/internal/models"
)

var columns = []string{
	"Confirmation #", "Restaurant ID", "Guest", "Phone",
	"Date", "Time", "Party Size", "Status", "Created At",
}

// Writer builds an xlsx workbook, one sheet at a time.
type Writer struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet starts a new sheet. The first call renames the default sheet.
func (w *Writer) AddSheet(name string) error {
	if len(name) > 31 {
		name = name[:31]
	}
	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheet = name
	w.currentRow = 1
	return nil
}

func (w *Writer) writeHeader() error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, col); err != nil {
			return err
		}
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}
	w.currentRow++
	return nil
}

func (w *Writer) writeBooking(b models.Booking) error {
	row := []any{
		b.ConfirmationNumber, b.RestaurantID, b.GuestName, b.GuestPhone,
		b.Date, b.Time, b.PartySize, b.Status,
		b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// Save writes the workbook and releases its resources.
func (w *Writer) Save(wr io.Writer) error {
	if err := w.file.Write(wr); err != nil {
		return err
	}
	return w.file.Close()
}

// SaveToFile writes the workbook to disk and releases its resources.
func (w *Writer) SaveToFile(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return err
	}
	return w.file.Close()
}

// Export writes a workbook with an Upcoming and a Past sheet from the
// given partition.
func Export(p classify.Partition, wr io.Writer) error {
	w := NewWriter()
	for _, sheet := range []struct {
		name     string
		bookings []models.Booking
	}{
		{"Upcoming", p.Upcoming},
		{"Past", p.Past},
	} {
		if err := w.AddSheet(sheet.name); err != nil {
			return err
		}
		if err := w.writeHeader(); err != nil {
			return err
		}
		for _, b := range sheet.bookings {
			if err := w.writeBooking(b); err != nil {
				return err
			}
		}
	}
	return w.Save(wr)
}
