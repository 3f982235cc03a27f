package domain

import (
	"time"
)

type AssignmentTemplateProject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AssignmentTemplate struct {
	ID                   int64                       `json:"id"`
	Name                 string                      `json:"name"`
	Description          string                      `json:"description"`
	TeamsPerProject      int32                       `json:"teamsPerProject"`
	TeamCapacity         int32                       `json:"teamCapacity"`
	MaxSameNationality   int32                       `json:"maxSameNationality"`   // 每个团队中同一国籍成员的上限
	UnlimitedNationality string                      `json:"unlimitedNationality"` // 不受上限约束的国籍
	Projects             []AssignmentTemplateProject `json:"projects"`
	CreatedAt            time.Time                   `json:"createdAt"`
	Version              int32                       `json:"-"`
}
