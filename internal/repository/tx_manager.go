package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	StatusEvents() OrderStatusEventRepository
	CartItems() CartItemRepository
	FoodItems() FoodItemRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 注文確定のように「ヘッダだけ残る」事故を防ぎたい書き込みはここを通す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
