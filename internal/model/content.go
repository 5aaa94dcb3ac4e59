package model

import "time"

// Content 博客文章
//
// 成员投稿后默认未审核（IsApproved=false），管理员审核通过后
// 才出现在公开列表中。
type Content struct {
	ID         string    `json:"id" bson:"_id"`
	Heading    string    `json:"heading" bson:"heading"`
	AuthorID   string    `json:"author_id" bson:"author_id"`
	Details    string    `json:"details" bson:"details"`
	CoverImage string    `json:"cover_image" bson:"cover_image"`
	IsApproved bool      `json:"is_approved" bson:"is_approved"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
