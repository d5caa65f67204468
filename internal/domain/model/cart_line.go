package model

// カートの1行（メモリ上の値オブジェクト）。
// (FoodItemID, SizeOptionID) の組で一意。
type CartLine struct {
	FoodItemID  string `json:"food_item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	//サイズ倍率込みの実効単価。追加時点で確定し、以後の
	//メニュー価格変更には追従しない。
	Price int64 `json:"price"`

	ImageURL    string `json:"image_url"`
	CategoryID  string `json:"category_id"`
	IsFeatured  bool   `json:"is_featured"`
	IsAvailable bool   `json:"is_available"`

	Quantity int64 `json:"quantity"`

	SizeOptionID   string  `json:"size_option_id,omitempty"`
	SizeName       string  `json:"size_name,omitempty"`
	SizeMultiplier float64 `json:"size_multiplier,omitempty"`
}

// 行の同一判定キー
type CartLineKey struct {
	FoodItemID   string
	SizeOptionID string
}

func (l CartLine) Key() CartLineKey {
	return CartLineKey{FoodItemID: l.FoodItemID, SizeOptionID: l.SizeOptionID}
}

func (l CartLine) LineTotal() int64 {
	return l.Price * l.Quantity
}

// メニュー＋サイズ選択からカート行を作る。size==nilならサイズなし。
func NewCartLine(item FoodItem, size *SizeOption, quantity int64) CartLine {
	line := CartLine{
		FoodItemID:  item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
		CategoryID:  item.CategoryID,
		IsFeatured:  item.IsFeatured,
		IsAvailable: item.IsAvailable,
		Quantity:    quantity,
	}
	if size != nil {
		line.Price = EffectivePrice(item.Price, size.Multiplier)
		line.SizeOptionID = size.ID
		line.SizeName = size.Name
		line.SizeMultiplier = size.Multiplier
	}
	return line
}
