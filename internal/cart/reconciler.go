package cart

import (
	"context"
	"sync"

	"app/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// Reconcilerはカート状態の唯一の持ち主。
// identityの切り替え・ローカル→リモートの移行・永続化の
// フォールバックをすべてここに集める（各所にif分岐を散らさない）。
type Reconciler struct {
	mu sync.Mutex

	identity Identity
	lines    []model.CartLine

	//identityで選ばれた正のストア。匿名かつローカル無しならnil。
	active Store

	//端末ローカル。移行元でありリモート書き込み失敗時の退避先。
	//サーバー側のAPI経路ではnil。
	local Store

	//認証identityに対応するリモートストアを作る
	remoteFor func(userID string) Store
}

func NewReconciler(local Store, remoteFor func(userID string) Store) *Reconciler {
	return &Reconciler{local: local, remoteFor: remoteFor}
}

type Totals struct {
	TotalPrice int64 `json:"total_price"`
	TotalItems int64 `json:"total_items"`
}

// identity切り替え時のロード兼マージ。
//
// 認証済み: リモートの永続カートを読む。リモートが空で端末に
// 匿名カートが残っていれば「移行」扱いにして、全行をリモートへ
// 書き込み→ローカルを消す→移行した行を状態にする。
// リモート到達不能ならローカルへ静かに切り戻す（UIは止めない）。
//
// 匿名: ローカルのみ。
func (r *Reconciler) LoadForIdentity(ctx context.Context, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.identity = id

	if id.IsAnonymous() {
		r.active = r.local
		if r.local == nil {
			r.lines = []model.CartLine{}
			return nil
		}
		lines, err := r.local.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("cart: local load failed")
			r.lines = []model.CartLine{}
			return nil
		}
		r.lines = lines
		return nil
	}

	remote := r.remoteFor(id.UserID)
	r.active = remote

	remoteLines, err := remote.Load(ctx)
	if err != nil {
		//リモートに届かない。ローカルへ退避してエラーにはしない。
		log.Warn().Err(err).Str("user_id", id.UserID).Msg("cart: remote load failed, falling back to local")
		r.lines = r.loadLocalOrEmpty(ctx)
		return nil
	}

	if len(remoteLines) == 0 && r.local != nil {
		localLines, lerr := r.local.Load(ctx)
		if lerr == nil && len(localLines) > 0 {
			//匿名カートの移行
			if merr := remote.Replace(ctx, localLines); merr != nil {
				log.Warn().Err(merr).Str("user_id", id.UserID).Msg("cart: migration failed, keeping local cart")
			} else if cerr := r.local.Clear(ctx); cerr != nil {
				log.Warn().Err(cerr).Msg("cart: local clear after migration failed")
			}
			r.lines = localLines
			return nil
		}
	}

	r.lines = remoteLines
	return nil
}

// 同一(商品,サイズ)の行があれば数量を加算、なければ追加する。
// 状態は即時更新し、永続化はベストエフォート。
func (r *Reconciler) AddLine(ctx context.Context, line model.CartLine) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := false
	for i := range r.lines {
		if r.lines[i].Key() == line.Key() {
			r.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		r.lines = append(r.lines, line)
	}

	r.persistLocked(ctx)
}

// 行を削除する。sizeOptionIDが空なら商品IDの行を全サイズ削除。
func (r *Reconciler) RemoveLine(ctx context.Context, foodItemID string, sizeOptionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.lines[:0]
	for _, l := range r.lines {
		if matchLine(l, foodItemID, sizeOptionID) {
			continue
		}
		kept = append(kept, l)
	}
	r.lines = kept

	r.persistLocked(ctx)
}

// 数量を置き換える。0以下はRemoveLineと同じ。
func (r *Reconciler) SetQuantity(ctx context.Context, foodItemID string, quantity int64, sizeOptionID string) {
	if quantity <= 0 {
		r.RemoveLine(ctx, foodItemID, sizeOptionID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if matchLine(r.lines[i], foodItemID, sizeOptionID) {
			r.lines[i].Quantity = quantity
		}
	}

	r.persistLocked(ctx)
}

// カートを空にして空集合を永続化する。
func (r *Reconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = []model.CartLine{}

	if r.active == nil {
		return nil
	}
	if err := r.active.Clear(ctx); err != nil {
		if r.local != nil && r.active != r.local {
			_ = r.local.Clear(ctx)
		}
		return err
	}
	return nil
}

// 現在の行のコピー
func (r *Reconciler) Lines() []model.CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.CartLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// 合計金額と合計点数。副作用なし。
func (r *Reconciler) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()

	var t Totals
	for _, l := range r.lines {
		t.TotalPrice += l.Price * l.Quantity
		t.TotalItems += l.Quantity
	}
	return t
}

func (r *Reconciler) Identity() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identity
}

// 正のストアへカート丸ごと書く。リモートに失敗したら
// 同じ内容をローカルへ退避して、このセッション内で失われないようにする。
// 失敗はUIへは出さない。
func (r *Reconciler) persistLocked(ctx context.Context) {
	if r.active == nil {
		return
	}
	if err := r.active.Replace(ctx, r.lines); err != nil {
		log.Warn().Err(err).Msg("cart: persist failed")
		if r.local != nil && r.active != r.local {
			if lerr := r.local.Replace(ctx, r.lines); lerr != nil {
				log.Error().Err(lerr).Msg("cart: local mirror failed")
			}
		}
	}
}

func (r *Reconciler) loadLocalOrEmpty(ctx context.Context) []model.CartLine {
	if r.local == nil {
		return []model.CartLine{}
	}
	lines, err := r.local.Load(ctx)
	if err != nil {
		return []model.CartLine{}
	}
	return lines
}

func matchLine(l model.CartLine, foodItemID string, sizeOptionID string) bool {
	if l.FoodItemID != foodItemID {
		return false
	}
	if sizeOptionID == "" {
		return true
	}
	return l.SizeOptionID == sizeOptionID
}
