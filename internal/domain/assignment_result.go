package domain

import "time"

type AssignmentResultTeam struct {
	ProjectID int64   `json:"projectID"`
	Seq       int32   `json:"seq"` // 同一项目下团队的序号，从 1 开始
	MemberIDs []int64 `json:"memberIDs"`
}

type AssignmentResult struct {
	ID               int64                  `json:"id"`
	AssignmentPlanID int64                  `json:"assignmentPlanID"`
	Fitness          float64                `json:"fitness"`
	Teams            []AssignmentResultTeam `json:"teams"`
	UnassignedIDs    []int64                `json:"unassignedIDs"` // 没有被分配到任何团队的学生
	CreatedAt        time.Time              `json:"createdAt"`
	Version          int32                  `json:"-"`
}
