package middleware

import (
	"shoestore/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 認証済みユーザー（リクエスト単位）
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

const ctxPrincipalKey = "principal"

func SetPrincipal(c echo.Context, p Principal) {
	c.Set(ctxPrincipalKey, p)
}

// AuthJWTを通っていなければ ok=false
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(ctxPrincipalKey).(Principal)
	if !ok || p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}
