package handler

import (
	"net/http"

	"shoestore/internal/domain/model"
	"shoestore/internal/middleware"
	"shoestore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

// POST/PUT の本文。PUTでは省略した項目は変更しない
type ProductRequest struct {
	Code        *string                   `json:"product_code"`
	Name        *string                   `json:"name"`
	Price       *int64                    `json:"price"`
	Description *string                   `json:"description"`
	ImageURL    *string                   `json:"image_url"`
	CategoryID  *int64                    `json:"category_id"`
	Sizes       *[]usecase.SizeStockInput `json:"sizes"`
}

// 在庫更新の入力
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/products と /staff/products（同じ操作）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	h.register(e.Group("/admin", withRoles(auth, model.RoleAdmin)...))
	h.register(e.Group("/staff", withRoles(auth, model.RoleStaff, model.RoleAdmin)...))
}

func (h *AdminProductHandler) register(g *echo.Group) {
	g.POST("/products", h.createProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)
	g.PUT("/products/:id/sizes/:size_id/stock", h.updateStock)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in := usecase.ProductCreateInput{
		Code:       req.Code,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}
	if req.Sizes != nil {
		in.Sizes = *req.Sizes
	}

	out, err := h.uc.Create(c.Request().Context(), actorID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Update(c.Request().Context(), actorID, productID, usecase.ProductUpdateInput{
		Code:        req.Code,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		Sizes:       req.Sizes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) updateStock(c echo.Context) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	sizeID, ok := paramID(c, "size_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid size_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Stock == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock required"})
	}

	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.UpdateSizeStock(c.Request().Context(), actorID, productID, sizeID, *req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

// AuthJWTが入れたPrincipalからユーザーIDを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}

// 認証チェーンの後ろにロールガードを足す（authは書き換えない）
func withRoles(auth []echo.MiddlewareFunc, roles ...model.Role) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(auth)+1)
	out = append(out, auth...)
	return append(out, middleware.RequireRoles(roles...))
}
