// Package agenda implements the daily activity agenda: Indonesian day/date
// headings, draft editing of items and saving.
package agenda

import (
	"fmt"
	"time"

	"github.com/starford/esurat/internal/apperr"
)

var dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jum'at", "Sabtu"}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDayDate renders t as "<day>/ <d> <month> <yyyy>" in Indonesian,
// e.g. "Jum'at/ 23 Januari 2026".
func FormatDayDate(t time.Time) string {
	return fmt.Sprintf("%s/ %d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}

// DayDateFor parses a YYYY-MM-DD date and formats it with FormatDayDate.
func DayDateFor(date string) (string, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", apperr.Invalid("Format tanggal harus YYYY-MM-DD.")
	}
	return FormatDayDate(t), nil
}
