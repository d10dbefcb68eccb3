package postage

import (
	"fmt"
	"strings"
	"time"
)

const (
	pdfTimestampLayout = "20060102150405"
	dayFolderLayout    = "2006-01-02"
)

// PDFFilename builds the provider filename for a single letter PDF:
// NOTIFY.<REFERENCE>.D.<code>.C.<createdAt>.PDF
func PDFFilename(reference string, class Class, createdAt time.Time) string {
	return fmt.Sprintf(
		"NOTIFY.%s.D.%s.C.%s.PDF",
		strings.ToUpper(reference),
		class.FileCode(),
		createdAt.Format(pdfTimestampLayout),
	)
}

// PDFKey prefixes the filename with the creation-day folder, which is how
// letter PDFs are laid out in the blob store.
func PDFKey(reference string, class Class, createdAt time.Time) string {
	return DayFolder(createdAt) + "/" + PDFFilename(reference, class, createdAt)
}

// DayFolder formats the per-day folder component of a blob key.
func DayFolder(t time.Time) string {
	return t.Format(dayFolderLayout)
}

// IsPDFKey reports whether a blob key refers to a letter PDF, by suffix,
// case-insensitively.
func IsPDFKey(key string) bool {
	return strings.HasSuffix(strings.ToUpper(key), ".PDF")
}
