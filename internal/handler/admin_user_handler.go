package handler

import (
	"net/http"

	"shoestore/internal/domain/model"
	"shoestore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	users  *usecase.UserAdminUsecase
	audits *usecase.AuditLogUsecase
}

func NewAdminUserHandler(users *usecase.UserAdminUsecase, audits *usecase.AuditLogUsecase) *AdminUserHandler {
	return &AdminUserHandler{users: users, audits: audits}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	mw := withRoles(auth, model.RoleAdmin)

	users := e.Group("/admin/users", mw...)
	users.GET("", h.List)
	users.PATCH("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
	users.POST("/:id/force-logout", h.ForceLogout)

	staff := e.Group("/admin/staff", mw...)
	staff.GET("", h.ListStaff)
	staff.POST("", h.CreateStaff)

	audits := e.Group("/admin/audit-logs", mw...)
	audits.GET("", h.ListAuditLogs)
}

func (h *AdminUserHandler) List(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.users.List(c.Request().Context(), c.QueryParam("q"), c.QueryParam("role"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) Update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	var req usecase.UserPatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	user, err := h.users.Update(c.Request().Context(), actorID, userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminUserHandler) Delete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	if err := h.users.Delete(c.Request().Context(), actorID, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	if err := h.users.ForceLogout(c.Request().Context(), actorID, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}

func (h *AdminUserHandler) ListStaff(c echo.Context) error {
	list, err := h.users.ListStaff(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminUserHandler) CreateStaff(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	user, err := h.users.CreateStaff(c.Request().Context(), actorID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GET /admin/audit-logs?actor_user_id&action&resource_type&resource_id&from&to
func (h *AdminUserHandler) ListAuditLogs(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	actorID, ok := queryInt64Ptr(c, "actor_user_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
	}
	resourceID, ok := queryInt64Ptr(c, "resource_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
	}

	out, err := h.audits.List(c.Request().Context(), usecase.AuditLogQuery{
		ActorUserID:  actorID,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   resourceID,
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
