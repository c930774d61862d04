package domain

const RoleAdmin = "admin"

// Admin is an operator allowed to review registrants when the admin guard is on.
type Admin struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
