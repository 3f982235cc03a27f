package domain

import "time"

type PreferenceSubmission struct {
	ID               int64     `json:"id"`
	AssignmentPlanID int64     `json:"assignmentPlanID"`
	UserID           int64     `json:"userID"`
	ProjectIDs       []int64   `json:"projectIDs"` // 按偏好从高到低排列，必须是模板中所有项目的一个排列
	CreatedAt        time.Time `json:"createdAt"`
	Version          int32     `json:"-"`
}
