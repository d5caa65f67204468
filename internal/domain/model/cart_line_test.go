package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	//四捨五入で整数ペソに収める
	assert.Equal(t, int64(150), EffectivePrice(100, 1.5))
	assert.Equal(t, int64(63), EffectivePrice(50, 1.25))
	assert.Equal(t, int64(100), EffectivePrice(100, 1.0))

	//不正な倍率は基準価格のまま
	assert.Equal(t, int64(100), EffectivePrice(100, 0))
	assert.Equal(t, int64(100), EffectivePrice(100, -2))
}

func TestNewCartLine_NoSize(t *testing.T) {
	item := FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120, IsAvailable: true}

	line := NewCartLine(item, nil, 2)

	assert.Equal(t, "f1", line.FoodItemID)
	assert.Equal(t, int64(120), line.Price)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Empty(t, line.SizeOptionID)
	assert.Equal(t, int64(240), line.LineTotal())
}

func TestNewCartLine_SizeAdjustsPrice(t *testing.T) {
	item := FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120}
	size := &SizeOption{ID: "s1", Name: "Large", Multiplier: 1.5}

	line := NewCartLine(item, size, 1)

	assert.Equal(t, int64(180), line.Price)
	assert.Equal(t, "Large", line.SizeName)
	assert.Equal(t, 1.5, line.SizeMultiplier)
}

func TestCartLineKey_DistinguishesSizes(t *testing.T) {
	item := FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120}
	regular := NewCartLine(item, nil, 1)
	large := NewCartLine(item, &SizeOption{ID: "s1", Name: "Large", Multiplier: 1.5}, 1)

	//同じ商品でもサイズ違いは別の行
	assert.NotEqual(t, regular.Key(), large.Key())
	assert.Equal(t, regular.Key(), NewCartLine(item, nil, 5).Key())
}
