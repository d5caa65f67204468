package cart

import "app/internal/domain/model"

// カートの持ち主。UserIDが空なら匿名（端末スコープ）。
// どちらのストアが正になるかはこれで決まる。
type Identity struct {
	UserID string
	Role   model.Role
}

func Anonymous() Identity {
	return Identity{}
}

func ForUser(userID string, role model.Role) Identity {
	return Identity{UserID: userID, Role: role}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}
