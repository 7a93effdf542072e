package server

import (
	"shoestore/internal/handler"

	"github.com/labstack/echo/v4"
)

// ルーティングに必要なハンドラ一式
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	AdminProduct  *handler.AdminProductHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	AdminOrder    *handler.AdminOrderHandler
	Address       *handler.AddressHandler
	PaymentMethod *handler.PaymentMethodHandler
	Voucher       *handler.VoucherHandler
	AdminUser     *handler.AdminUserHandler
	Momo          *handler.MomoHandler
}

// authは AuthJWT + TokenVersionGuard
func RegisterRoutes(e *echo.Echo, h Handlers, auth ...echo.MiddlewareFunc) {
	h.Health.RegisterRoutes(e)

	//公開
	h.Product.RegisterRoutes(e)

	h.Auth.RegisterRoutes(e, auth...)
	h.Cart.RegisterRoutes(e, auth...)
	h.Order.RegisterRoutes(e, auth...)
	h.Address.RegisterRoutes(e, auth...)
	h.PaymentMethod.RegisterRoutes(e, auth...)
	h.Voucher.RegisterRoutes(e, auth...)
	h.Momo.RegisterRoutes(e, auth...)

	//staff/admin
	h.AdminProduct.RegisterRoutes(e, auth...)
	h.AdminOrder.RegisterRoutes(e, auth...)
	h.AdminUser.RegisterRoutes(e, auth...)
}
