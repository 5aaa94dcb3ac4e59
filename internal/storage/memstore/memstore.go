// Package memstore 提供 storage.Store 的内存实现
//
// 行为与 mongostore 对齐（包括唯一索引约束和排序），用于 handler
// 单元测试，无需外部 MongoDB 依赖。
package memstore

import (
	"context"
	"sort"
	"sync"

	"club-admin/internal/model"
	"club-admin/internal/storage"
)

// Store 内存存储
type Store struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	applications map[string]*model.Application
	contents     map[string]*model.Content
	teamMembers  map[string]*model.TeamMember
	images       map[string]*model.GalleryImage
	seq          int // 插入序号，保证排序稳定
	order        map[string]int
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		applications: make(map[string]*model.Application),
		contents:     make(map[string]*model.Content),
		teamMembers:  make(map[string]*model.TeamMember),
		images:       make(map[string]*model.GalleryImage),
		order:        make(map[string]int),
	}
}

// Close 实现 storage.Store
func (s *Store) Close() error { return nil }

func (s *Store) nextSeq(id string) {
	s.seq++
	s.order[id] = s.seq
}

// 确保实现了完整接口
var _ storage.Store = (*Store)(nil)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	// 唯一索引：email, student_id, codeforces_id（codeforces_id 为稀疏索引，空值不冲突）
	for _, u := range s.users {
		if u.Email == user.Email || u.StudentID == user.StudentID ||
			(user.CodeforcesID != "" && u.CodeforcesID == user.CodeforcesID) {
			return storage.ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	s.nextSeq(user.ID)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetUserByStudentID(_ context.Context, studentID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.StudentID == studentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByIdentity(_ context.Context, email, studentID string) (*model.User, error) {
	if email == "" && studentID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if (email != "" && u.Email == email) || (studentID != "" && u.StudentID == studentID) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserConflict(_ context.Context, email, studentID, codeforcesID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if (email != "" && u.Email == email) ||
			(studentID != "" && u.StudentID == studentID) ||
			(codeforcesID != "" && u.CodeforcesID == codeforcesID) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return s.order[users[i].ID] < s.order[users[j].ID] })
	return users, nil
}

func (s *Store) UpdateUserRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Store) UpdateUserAvatar(_ context.Context, id, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Avatar = avatarURL
	return nil
}

func (s *Store) GetUserProfile(_ context.Context, studentID string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.StudentID != studentID {
			continue
		}
		count := 0
		for _, c := range s.contents {
			if c.AuthorID == u.ID {
				count++
			}
		}
		return &model.Profile{
			ID:         u.ID,
			FullName:   u.FullName,
			StudentID:  u.StudentID,
			Avatar:     u.Avatar,
			Session:    u.Session,
			Department: u.Department,
			BlogsCount: count,
		}, nil
	}
	return nil, nil
}

// ============================================================================
// ApplicationStore
// ============================================================================

func (s *Store) CreateApplication(_ context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; ok {
		return storage.ErrDuplicate
	}
	// 唯一索引：email, codeforces_id（student_id 无唯一约束）
	for _, a := range s.applications {
		if a.Email == app.Email || a.CodeforcesID == app.CodeforcesID {
			return storage.ErrDuplicate
		}
	}
	cp := *app
	s.applications[app.ID] = &cp
	s.nextSeq(app.ID)
	return nil
}

func (s *Store) GetApplicationByStudentID(_ context.Context, studentID string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.StudentID == studentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindApplicationConflict(_ context.Context, email, studentID, codeforcesID string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if (email != "" && a.Email == email) ||
			(studentID != "" && a.StudentID == studentID) ||
			(codeforcesID != "" && a.CodeforcesID == codeforcesID) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListApplications(_ context.Context) ([]*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]*model.Application, 0, len(s.applications))
	for _, a := range s.applications {
		cp := *a
		apps = append(apps, &cp)
	}
	// 提交时间升序
	sort.Slice(apps, func(i, j int) bool { return s.order[apps[i].ID] < s.order[apps[j].ID] })
	return apps, nil
}

func (s *Store) DeleteApplication(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.applications, id)
	return nil
}

// ============================================================================
// ContentStore
// ============================================================================

func (s *Store) CreateContent(_ context.Context, content *model.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[content.ID]; ok {
		return storage.ErrDuplicate
	}
	for _, c := range s.contents {
		if c.Heading == content.Heading {
			return storage.ErrDuplicate
		}
	}
	cp := *content
	s.contents[content.ID] = &cp
	s.nextSeq(content.ID)
	return nil
}

func (s *Store) GetContent(_ context.Context, id string) (*model.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contents[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ListContent(_ context.Context, approvedOnly bool) ([]*model.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents := make([]*model.Content, 0, len(s.contents))
	for _, c := range s.contents {
		if approvedOnly && !c.IsApproved {
			continue
		}
		cp := *c
		contents = append(contents, &cp)
	}
	// 创建时间降序
	sort.Slice(contents, func(i, j int) bool { return s.order[contents[i].ID] > s.order[contents[j].ID] })
	return contents, nil
}

func (s *Store) SetContentApproved(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.IsApproved = true
	return nil
}

func (s *Store) DeleteContent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.contents, id)
	return nil
}

// ============================================================================
// TeamStore
// ============================================================================

func (s *Store) CreateTeamMember(_ context.Context, member *model.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teamMembers[member.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *member
	s.teamMembers[member.ID] = &cp
	s.nextSeq(member.ID)
	return nil
}

func (s *Store) GetTeamMember(_ context.Context, id string) (*model.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.teamMembers[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ListTeamMembers(_ context.Context, tf storage.TeamFilter) ([]*model.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]*model.TeamMember, 0, len(s.teamMembers))
	for _, m := range s.teamMembers {
		if tf.IsEC != nil && m.IsEC != *tf.IsEC {
			continue
		}
		if tf.IsAlumni != nil && m.IsAlumni != *tf.IsAlumni {
			continue
		}
		if tf.Team != "" && m.Team != tf.Team {
			continue
		}
		cp := *m
		members = append(members, &cp)
	}
	sort.Slice(members, func(i, j int) bool { return s.order[members[i].ID] > s.order[members[j].ID] })
	return members, nil
}

func (s *Store) UpdateTeamMember(_ context.Context, member *model.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.teamMembers[member.ID]
	if !ok {
		return storage.ErrNotFound
	}
	m.FullName = member.FullName
	m.Position = member.Position
	m.Session = member.Session
	m.IsAlumni = member.IsAlumni
	m.IsEC = member.IsEC
	m.Team = member.Team
	return nil
}

// ============================================================================
// GalleryStore
// ============================================================================

func (s *Store) CreateGalleryImages(_ context.Context, images []*model.GalleryImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range images {
		if _, ok := s.images[img.ID]; ok {
			return storage.ErrDuplicate
		}
	}
	for _, img := range images {
		cp := *img
		s.images[img.ID] = &cp
		s.nextSeq(img.ID)
	}
	return nil
}

func (s *Store) ListGalleryImages(_ context.Context) ([]*model.GalleryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	images := make([]*model.GalleryImage, 0, len(s.images))
	for _, img := range s.images {
		cp := *img
		images = append(images, &cp)
	}
	sort.Slice(images, func(i, j int) bool { return s.order[images[i].ID] > s.order[images[j].ID] })
	return images, nil
}
