package handler

import (
	"net/http"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type VoucherHandler struct {
	uc *usecase.VoucherUsecase
}

func NewVoucherHandler(uc *usecase.VoucherUsecase) *VoucherHandler {
	return &VoucherHandler{uc: uc}
}

// subtotalが0ならカートから計算する
type VoucherApplyRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

type VoucherRequest struct {
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	Value       int64      `json:"value"`
	MaxDiscount int64      `json:"max_discount"`
	MinOrder    int64      `json:"min_order"`
	ExpiresAt   *time.Time `json:"expires_at"`
	UsageLimit  int64      `json:"usage_limit"`
	Description string     `json:"description"`
}

func (h *VoucherHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	me := e.Group("/me", auth...)
	me.GET("/vouchers", h.listMine)
	me.POST("/vouchers/apply", h.apply)

	admin := e.Group("/admin/vouchers", withRoles(auth, model.RoleAdmin)...)
	admin.GET("", h.adminList)
	admin.POST("", h.adminCreate)
	admin.DELETE("/:id", h.adminDelete)
}

func (h *VoucherHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	list, err := h.uc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *VoucherHandler) apply(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VoucherApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Apply(c.Request().Context(), userID, req.Code, req.Subtotal)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VoucherHandler) adminList(c echo.Context) error {
	list, err := h.uc.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *VoucherHandler) adminCreate(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VoucherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	created, err := h.uc.AdminCreate(c.Request().Context(), actorID, usecase.VoucherCreateInput{
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		MaxDiscount: req.MaxDiscount,
		MinOrder:    req.MinOrder,
		ExpiresAt:   req.ExpiresAt,
		UsageLimit:  req.UsageLimit,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *VoucherHandler) adminDelete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
