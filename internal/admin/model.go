package admin

import "time"

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Permission areas a moderator can be granted. Admins implicitly hold all.
const (
	PermOrders    = "orders"
	PermRecharges = "recharges"
	PermRefunds   = "refunds"
	PermProducts  = "products"
	PermTokens    = "tokens"
	PermCoupons   = "coupons"
	PermPayments  = "payments"
	PermSettings  = "settings"
	PermNews      = "news"
	PermAdmins    = "admins"
)

type AdminUser struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         AdminUser `json:"user"`
	Permissions  []string  `json:"permissions"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateAdminRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
}

type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}
