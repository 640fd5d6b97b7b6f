package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleViewer UserRole = "VIEWER"
)

// Account is a configured operator that can sign in.
type Account struct {
	Username     string
	PasswordHash string
	Role         UserRole
}
