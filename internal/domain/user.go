package domain

import "time"

// UserRole é o papel carregado no JWT do operador.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// Plan é o plano de assinatura de um usuário do SaaS.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) Valid() bool {
	return p == PlanBasic || p == PlanPro || p == PlanEnterprise
}

// UserStatus é a situação da conta no SaaS.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive || s == UserSuspended
}

// User representa um cliente do app SaaS de demonstração. Email é único.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Plan           Plan       `json:"plan"`
	Status         UserStatus `json:"status"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastLogin      time.Time  `json:"lastLogin"`
	SubscriptionID *string    `json:"subscriptionId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LoginRequest é o payload de login do operador.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
