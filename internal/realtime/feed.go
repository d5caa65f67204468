package realtime

import (
	"context"
	"sync"
)

type Event string

const (
	EventInsert Event = "INSERT"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
)

// テーブル単位の変更通知。行の中身は運ばない。
// 受け側は通知をきっかけに全件取り直す。
type Change struct {
	Table string `json:"table"`
	Event Event  `json:"event"`
	RowID string `json:"row_id,omitempty"`
}

type Handler func(Change)

// 変更通知のフィード。
type Feed interface {
	Publish(ctx context.Context, c Change) error

	//channel名＋購読するテーブル群で登録する。
	//返ったSubscriptionのUnsubscribeで必ず解除すること。
	Subscribe(channel string, tables []string, h Handler) (*Subscription, error)
}

// 購読ハンドル。Unsubscribeは何回呼んでも1回しか効かない。
type Subscription struct {
	once sync.Once
	stop func()
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.stop)
}
