package cart

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

// テスト用のインメモリStore。失敗を注入できる。
type fakeStore struct {
	lines []model.CartLine

	loadErr    error
	replaceErr error
	clearErr   error

	replaceCalls int
	clearCalls   int
}

func (s *fakeStore) Load(ctx context.Context) ([]model.CartLine, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *fakeStore) Replace(ctx context.Context, lines []model.CartLine) error {
	s.replaceCalls++
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.lines = make([]model.CartLine, len(lines))
	copy(s.lines, lines)
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.lines = nil
	return nil
}

func line(foodID string, sizeID string, price int64, qty int64) model.CartLine {
	return model.CartLine{
		FoodItemID:   foodID,
		Name:         "item-" + foodID,
		Price:        price,
		Quantity:     qty,
		SizeOptionID: sizeID,
	}
}

func newTestReconciler(local *fakeStore, remote *fakeStore) *Reconciler {
	var l Store
	if local != nil {
		l = local
	}
	return NewReconciler(l, func(userID string) Store { return remote })
}

func TestReconciler_AddLine_MergesSameKey(t *testing.T) {
	ctx := context.Background()
	remote := &fakeStore{}
	rec := newTestReconciler(nil, remote)
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 1))
	rec.AddLine(ctx, line("f1", "", 120, 2))

	lines := rec.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(3), lines[0].Quantity)

	//サイズ違いは別の行
	rec.AddLine(ctx, line("f1", "large", 180, 1))
	assert.Len(t, rec.Lines(), 2)
}

func TestReconciler_AddLine_ZeroQuantityBecomesOne(t *testing.T) {
	ctx := context.Background()
	rec := newTestReconciler(nil, &fakeStore{})
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 0))

	lines := rec.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Quantity)
}

func TestReconciler_SetQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	rec := newTestReconciler(nil, &fakeStore{})
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 2))
	rec.SetQuantity(ctx, "f1", 0, "")

	assert.Empty(t, rec.Lines())
}

func TestReconciler_RemoveLine_EmptySizeRemovesAllSizes(t *testing.T) {
	ctx := context.Background()
	rec := newTestReconciler(nil, &fakeStore{})
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 1))
	rec.AddLine(ctx, line("f1", "large", 180, 1))
	rec.AddLine(ctx, line("f2", "", 50, 1))

	rec.RemoveLine(ctx, "f1", "")

	lines := rec.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "f2", lines[0].FoodItemID)
}

func TestReconciler_RemoveLine_SpecificSizeOnly(t *testing.T) {
	ctx := context.Background()
	rec := newTestReconciler(nil, &fakeStore{})
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 1))
	rec.AddLine(ctx, line("f1", "large", 180, 1))

	rec.RemoveLine(ctx, "f1", "large")

	lines := rec.Lines()
	assert.Len(t, lines, 1)
	assert.Empty(t, lines[0].SizeOptionID)
}

func TestReconciler_Totals(t *testing.T) {
	ctx := context.Background()
	rec := newTestReconciler(nil, &fakeStore{})
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 2))
	rec.AddLine(ctx, line("f2", "", 50, 1))

	tot := rec.Totals()
	assert.Equal(t, int64(290), tot.TotalPrice)
	assert.Equal(t, int64(3), tot.TotalItems)
}

func TestReconciler_Anonymous_UsesLocalOnly(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 1)}}
	remote := &fakeStore{}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, Anonymous()))
	assert.Len(t, rec.Lines(), 1)

	rec.AddLine(ctx, line("f2", "", 50, 1))

	//匿名の書き込みはローカルだけ
	assert.Len(t, local.lines, 2)
	assert.Zero(t, remote.replaceCalls)
}

func TestReconciler_Login_MigratesLocalCart(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 2)}}
	remote := &fakeStore{}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	//端末のカートがリモートへ移り、ローカルは消える
	assert.Len(t, remote.lines, 1)
	assert.Equal(t, int64(2), remote.lines[0].Quantity)
	assert.Nil(t, local.lines)
	assert.Len(t, rec.Lines(), 1)
}

func TestReconciler_Login_MigrationFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 2)}}
	remote := &fakeStore{replaceErr: errors.New("db down")}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	//移行に失敗してもローカルの中身は消さない
	assert.Len(t, local.lines, 1)
	assert.Len(t, rec.Lines(), 1)
	assert.Zero(t, local.clearCalls)
}

func TestReconciler_Login_RemoteNonEmptyWins(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 1)}}
	remote := &fakeStore{lines: []model.CartLine{line("f9", "", 99, 3)}}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	//リモートに中身があればそちらが正。移行はしない
	lines := rec.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "f9", lines[0].FoodItemID)
	assert.Len(t, local.lines, 1)
}

func TestReconciler_RemoteLoadFailure_FallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 1)}}
	remote := &fakeStore{loadErr: errors.New("timeout")}
	rec := newTestReconciler(local, remote)

	//エラーにせずローカルの行で続行する
	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))
	assert.Len(t, rec.Lines(), 1)
}

func TestReconciler_PersistFailure_MirrorsToLocal(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{}
	remote := &fakeStore{replaceErr: errors.New("db down")}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	rec.AddLine(ctx, line("f1", "", 120, 1))

	//リモートへ書けない間はローカルに丸ごと退避する
	assert.Len(t, rec.Lines(), 1)
	assert.Len(t, local.lines, 1)
}

func TestReconciler_Clear_FailurePropagatesAndMirrors(t *testing.T) {
	ctx := context.Background()
	local := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 1)}}
	remote := &fakeStore{lines: []model.CartLine{line("f1", "", 120, 1)}, clearErr: errors.New("db down")}
	rec := newTestReconciler(local, remote)

	assert.NoError(t, rec.LoadForIdentity(ctx, ForUser("u1", model.RoleCustomer)))

	err := rec.Clear(ctx)
	assert.Error(t, err)

	//状態とローカルは空になっている
	assert.Empty(t, rec.Lines())
	assert.Nil(t, local.lines)
}
