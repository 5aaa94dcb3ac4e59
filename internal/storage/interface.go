package storage

import (
	"context"

	"club-admin/internal/model"
)

// TeamFilter 团队名录查询条件（nil 字段表示不过滤）
type TeamFilter struct {
	IsEC     *bool
	IsAlumni *bool
	Team     model.TeamName
}

// UserStore 成员账号存储
//
// 查询方法约定：未命中返回 (nil, nil)，调用方自行判空；
// 更新方法约定：目标不存在返回 ErrNotFound。
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByStudentID(ctx context.Context, studentID string) (*model.User, error)
	// FindUserByIdentity 按 email 或 student_id 查找（登录用，$or 语义）
	FindUserByIdentity(ctx context.Context, email, studentID string) (*model.User, error)
	// FindUserConflict 按 email / student_id / codeforces_id 任一匹配查找（查重用）
	FindUserConflict(ctx context.Context, email, studentID, codeforcesID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	// UpdateUserRefreshToken 覆盖当前刷新令牌；传空串即撤销
	UpdateUserRefreshToken(ctx context.Context, id, token string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserAvatar(ctx context.Context, id, avatarURL string) error
	// GetUserProfile 聚合查询：用户资料 + 已发博客数
	GetUserProfile(ctx context.Context, studentID string) (*model.Profile, error)
}

// ApplicationStore 入会申请存储
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplicationByStudentID(ctx context.Context, studentID string) (*model.Application, error)
	FindApplicationConflict(ctx context.Context, email, studentID, codeforcesID string) (*model.Application, error)
	// ListApplications 按提交时间升序（先到先审）
	ListApplications(ctx context.Context) ([]*model.Application, error)
	DeleteApplication(ctx context.Context, id string) error
}

// ContentStore 博客内容存储
type ContentStore interface {
	CreateContent(ctx context.Context, content *model.Content) error
	GetContent(ctx context.Context, id string) (*model.Content, error)
	// ListContent 按创建时间降序；approvedOnly 时只返回已审核内容
	ListContent(ctx context.Context, approvedOnly bool) ([]*model.Content, error)
	SetContentApproved(ctx context.Context, id string) error
	DeleteContent(ctx context.Context, id string) error
}

// TeamStore 团队名录存储
type TeamStore interface {
	CreateTeamMember(ctx context.Context, member *model.TeamMember) error
	GetTeamMember(ctx context.Context, id string) (*model.TeamMember, error)
	ListTeamMembers(ctx context.Context, filter TeamFilter) ([]*model.TeamMember, error)
	UpdateTeamMember(ctx context.Context, member *model.TeamMember) error
}

// GalleryStore 相册存储
type GalleryStore interface {
	// CreateGalleryImages 批量插入（bulk upload 的成功子集）
	CreateGalleryImages(ctx context.Context, images []*model.GalleryImage) error
	ListGalleryImages(ctx context.Context) ([]*model.GalleryImage, error)
}

// Store 完整存储接口，由 mongostore（生产）和 memstore（测试）实现
type Store interface {
	UserStore
	ApplicationStore
	ContentStore
	TeamStore
	GalleryStore
	Close() error
}
