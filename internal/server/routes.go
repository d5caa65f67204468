package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlersはルート登録に必要なハンドラ一式。
type Handlers struct {
	Menu       *handler.MenuHandler
	Auth       *handler.AuthHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	AdminMenu  *handler.AdminMenuHandler
	AdminOrder *handler.AdminOrderHandler
	AdminUser  *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	h.Menu.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.AdminMenu.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e)
}
