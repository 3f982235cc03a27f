package domain

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "学生"
	RoleAdmin   Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	BelbinRole   string    `json:"belbinRole"`  // 贝尔宾团队角色测试结果（如 Plant、Shaper 等）
	Nationality  string    `json:"nationality"` // 国籍，用于组队时的成员构成约束
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
