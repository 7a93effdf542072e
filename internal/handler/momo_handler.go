package handler

import (
	"fmt"
	"net/http"
	"strings"

	"shoestore/internal/infra/payment"
	"shoestore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// MoMoウォレット決済
type MomoHandler struct {
	uc    *usecase.WalletUsecase
	feURL string
}

func NewMomoHandler(uc *usecase.WalletUsecase, feURL string) *MomoHandler {
	return &MomoHandler{uc: uc, feURL: strings.TrimRight(feURL, "/")}
}

type CreatePaymentRequest struct {
	OrderID int64 `json:"order_id"`
}

// ipn/return はMoMoから呼ばれるのでJWTなし（署名で検証）
func (h *MomoHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	g := e.Group("/momo")

	g.POST("/create-payment", h.CreatePayment, auth...)
	g.POST("/ipn", h.IPN)
	g.GET("/return", h.Return)
}

func (h *MomoHandler) CreatePayment(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.OrderID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order_id"})
	}

	out, err := h.uc.CreatePayment(c.Request().Context(), userID, req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// MoMoへは204だけ返す
func (h *MomoHandler) IPN(c echo.Context) error {
	var cb payment.Callback
	if err := c.Bind(&cb); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if _, err := h.uc.HandleCallback(c.Request().Context(), cb); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ブラウザのリダイレクト先。FE_URLがあればフロントの注文ページへ戻す
func (h *MomoHandler) Return(c echo.Context) error {
	var cb payment.Callback
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &cb); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}

	out, err := h.uc.HandleCallback(c.Request().Context(), cb)
	if err != nil {
		return writeError(c, err)
	}

	if h.feURL == "" {
		return c.JSON(http.StatusOK, out)
	}
	result := "failed"
	if out.Success {
		result = "success"
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("%s/orders/%d?payment=%s", h.feURL, out.OrderID, result))
}
