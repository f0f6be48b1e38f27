package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleMember Role = "user"
	RoleAdmin  Role = "admin"
)

// ParseRole 只接受已知的角色，未知的角色字符串直接报错，
// 避免其被悄悄当成普通用户处理
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("未知的角色: %q", s)
	}
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// Principal 是一次请求携带的已认证身份
type Principal struct {
	UserID int64
	Role   Role
}
