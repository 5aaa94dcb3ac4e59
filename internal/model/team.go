package model

import "time"

// TeamName 分组名称
type TeamName string

const (
	TeamDevelopment TeamName = "Development"
	TeamGraphics    TeamName = "Graphics"
	TeamManagement  TeamName = "Management"
	TeamContent     TeamName = "Content"
)

// ValidTeamName 校验分组是否合法（空值表示未分组，允许）
func ValidTeamName(t TeamName) bool {
	switch t {
	case "", TeamDevelopment, TeamGraphics, TeamManagement, TeamContent:
		return true
	}
	return false
}

// TeamMember 团队名录条目（与成员账号独立，可含校友）
type TeamMember struct {
	ID        string    `json:"id" bson:"_id"`
	FullName  string    `json:"full_name" bson:"full_name"`
	Position  string    `json:"position,omitempty" bson:"position,omitempty"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	Session   string    `json:"session" bson:"session"`
	IsAlumni  bool      `json:"is_alumni" bson:"is_alumni"`
	IsEC      bool      `json:"is_ec" bson:"is_ec"`
	Team      TeamName  `json:"team,omitempty" bson:"team,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
