package borrows

import "time"

// Borrow は borrows テーブルの1行を表す。
// BookULID はAPI上の参照キーで、永続化時に BookID へ解決される。
type Borrow struct {
	BorrowID   int64
	BorrowULID string
	BookID     int64
	BookULID   string
	Quantity   int
	DueDate    time.Time
	CreatedAt  time.Time
}

// 集計行（書誌ごとの貸出数合計）
type SummaryRow struct {
	Title         string
	ISBN          string
	TotalQuantity int
}
