package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User 社团成员账号
//
// PasswordHash 和 RefreshToken 永不出现在 JSON 响应中；
// RefreshToken 保存当前唯一有效的刷新令牌（单会话设计），
// 置空即撤销，覆盖即作废旧令牌。
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"full_name"`
	StudentID    string    `json:"student_id" bson:"student_id"`
	CodeforcesID string    `json:"codeforces_id" bson:"codeforces_id"`
	Session      string    `json:"session" bson:"session"`
	Department   string    `json:"department" bson:"department"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	RefreshToken string    `json:"-" bson:"refresh_token,omitempty"`
	Role         UserRole  `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Profile 成员主页视图（聚合查询结果：用户资料 + 博客数）
type Profile struct {
	ID         string `json:"id" bson:"_id"`
	FullName   string `json:"full_name" bson:"full_name"`
	StudentID  string `json:"student_id" bson:"student_id"`
	Avatar     string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Session    string `json:"session" bson:"session"`
	Department string `json:"department" bson:"department"`
	BlogsCount int    `json:"blogs_count" bson:"blogs_count"`
}
