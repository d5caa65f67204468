package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"app/internal/domain/model"

	_ "modernc.org/sqlite"
)

// 端末ローカルの永続ストア（SQLiteのKV1テーブル）。
// 匿名カートと「直近の注文控え」を固定キーのJSONで保存する。
// リモートが落ちていてもここだけで動けるのが前提。
const (
	KeyCart      = "cart"
	KeyLastOrder = "last_order"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	// Busy timeout + WAL
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	const schema = `CREATE TABLE IF NOT EXISTS device_store (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// 値をJSONで保存する（上書き）。
func (s *Store) Put(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO device_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(body))
	return err
}

// 見つかればtrue。見つからないのはエラーではない。
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM device_store WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_store WHERE key = ?`, key)
	return err
}

// ===== 匿名カート =====

func (s *Store) LoadCart(ctx context.Context) ([]model.CartLine, error) {
	var lines []model.CartLine
	found, err := s.Get(ctx, KeyCart, &lines)
	if err != nil {
		return []model.CartLine{}, err
	}
	if !found {
		return []model.CartLine{}, nil
	}
	return lines, nil
}

func (s *Store) SaveCart(ctx context.Context, lines []model.CartLine) error {
	return s.Put(ctx, KeyCart, lines)
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.Delete(ctx, KeyCart)
}

// ===== 直近の注文控え =====

// 注文確定画面用の非正規化スナップショット。
// リモートの読み戻しが遅くても表示できるようにローカルへ残す。
type LastOrder struct {
	ID            string           `json:"id"`
	Items         []model.CartLine `json:"items"`
	Total         int64            `json:"total"`
	Status        string           `json:"status"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	OrderType     string           `json:"order_type"`
	PaymentMethod string           `json:"payment_method"`
	CreatedAt     string           `json:"created_at"`
	EstimatedTime string           `json:"estimated_time"`
}

func (s *Store) SaveLastOrder(ctx context.Context, o LastOrder) error {
	return s.Put(ctx, KeyLastOrder, o)
}

func (s *Store) LoadLastOrder(ctx context.Context) (*LastOrder, error) {
	var o LastOrder
	found, err := s.Get(ctx, KeyLastOrder, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}
