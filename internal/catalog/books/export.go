package books

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Excel取り込み用エクスポートの上限。蔵書がこれを超える運用は想定しない。
const exportLimit = 10000

var exportHeader = []string{"id", "title", "author", "genre", "isbn", "description", "copies", "availability", "createdAt"}

// ExportCSV は蔵書一覧をCSVで返す。Excelでそのまま開けるよう cp932 に変換する。
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.store.ListBooks(ctx, ListQuery{
		SortBy: "created_at",
		Order:  "ASC",
		Limit:  exportLimit,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := transform.NewWriter(&buf, japanese.ShiftJIS.NewEncoder())
	w := csv.NewWriter(enc)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range items {
		b := &items[i]
		rec := []string{
			b.BookULID,
			b.Title,
			b.Author,
			b.Genre,
			b.ISBN,
			b.Description,
			strconv.Itoa(b.Copies),
			strconv.FormatBool(b.Availability),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
