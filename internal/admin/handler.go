package admin

import (
	"errors"
	"net/http"

	"boompay/internal/api"
	"boompay/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo      Repository
	jwtSecret string
}

func NewHandler(db *sqlx.DB, jwtSecret string) *Handler {
	return &Handler{
		repo:      NewRepository(db),
		jwtSecret: jwtSecret,
	}
}

// Login godoc
// @Summary      Admin login
// @Description  Authenticates a console user and returns access & refresh tokens.
// @Tags         admin,auth
// @Accept       json
// @Produce      json
// @Param        request body admin.LoginRequest true "Credentials"
// @Success      200 {object} admin.LoginResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /admin/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to generate tokens"})
		return
	}

	permissions, err := h.repo.Permissions(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load permissions"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
		Permissions:  permissions,
	})
}

// Refresh godoc
// @Summary      Refresh admin tokens
// @Tags         admin,auth
// @Accept       json
// @Produce      json
// @Param        request body admin.RefreshRequest true "Refresh token"
// @Success      200 {object} admin.LoginResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /admin/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	claims, err := auth.ValidateToken(req.RefreshToken, h.jwtSecret)
	if err != nil || claims.TokenType != "refresh" {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	user, err := h.repo.FindByID(c.Request.Context(), claims.AdminID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "admin user no longer exists"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to generate tokens"})
		return
	}

	permissions, err := h.repo.Permissions(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load permissions"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
		Permissions:  permissions,
	})
}

// List godoc
// @Summary      List console users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} admin.AdminUser
// @Router       /admin/users [get]
func (h *Handler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list admin users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// Create godoc
// @Summary      Create a console user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body admin.CreateAdminRequest true "New user"
// @Success      201 {object} admin.AdminUser
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/users [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if verrs := api.ValidateStruct(req); len(verrs) > 0 {
		api.RespondWithValidationErrors(c, verrs)
		return
	}

	if req.Role != RoleAdmin && req.Role != RoleModerator {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid role"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to hash password"})
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, passwordHash, req.Role, req.Permissions)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create admin user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// SetPermissions godoc
// @Summary      Replace a console user's permissions
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        adminID path string true "Admin user ID"
// @Param        request body admin.UpdatePermissionsRequest true "Permission set"
// @Success      200 {object} api.MessageResponse
// @Router       /admin/users/{adminID}/permissions [put]
func (h *Handler) SetPermissions(c *gin.Context) {
	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.SetPermissions(c.Request.Context(), c.Param("adminID"), req.Permissions); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update permissions"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "permissions updated"})
}

// Delete godoc
// @Summary      Delete a console user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        adminID path string true "Admin user ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/users/{adminID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("adminID")); err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "admin user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete admin user"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "admin user deleted"})
}
