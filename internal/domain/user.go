package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID       int64  `db:"id"`
	Email    string `db:"email"`
	FullName string `db:"full_name"`
	Hash     string `db:"password_hash"`
	Role     string `db:"role"`
	IsActive bool   `db:"is_active"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
