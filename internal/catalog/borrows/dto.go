package borrows

import "time"

// 貸出登録リクエスト。フィールド名は既存クライアント互換。
type CreateBorrowRequest struct {
	Book     string `json:"book"`
	Quantity int    `json:"quantity"`
	// RFC3339 または "2006-01-02" 形式の文字列を想定
	DueDate string `json:"dueDate"`
}

// 貸出レスポンス
type BorrowResponse struct {
	ID        string    `json:"id"`
	Book      string    `json:"book"`
	Quantity  int       `json:"quantity"`
	DueDate   time.Time `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// 集計レスポンス
type SummaryBook struct {
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
}

type SummaryResponse struct {
	Book          SummaryBook `json:"book"`
	TotalQuantity int         `json:"totalQuantity"`
}
