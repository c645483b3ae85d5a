package books

import "time"

// Book は books テーブルの1行を表す
type Book struct {
	BookID       int64
	BookULID     string
	Title        string
	Author       string
	Genre        string
	ISBN         string
	Description  string
	Copies       int
	Availability bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// 一覧取得用の検索条件。SortBy / Order は validate 側で
// ホワイトリスト済みのカラム名・方向のみが入る。
type ListQuery struct {
	Genre  string // 正規化済み（大文字）。空ならフィルタなし
	SortBy string
	Order  string // "ASC" or "DESC"
	Limit  int
}
