package model

import "time"

// ApplicationStatus 入会申请的处理结果
type ApplicationStatus string

const (
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application 待审核的入会申请
//
// 没有持久化的中间状态：审批即终态，approved 转为 User 后删除，
// rejected 直接删除。email 和 codeforces_id 有唯一索引，
// student_id 沿用原始模型未加唯一约束。
type Application struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"full_name"`
	StudentID    string    `json:"student_id" bson:"student_id"`
	CodeforcesID string    `json:"codeforces_id" bson:"codeforces_id"`
	Session      string    `json:"session" bson:"session"`
	Department   string    `json:"department" bson:"department"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
