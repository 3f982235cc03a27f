package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func testTemplate() *domain.AssignmentTemplate {
	return &domain.AssignmentTemplate{
		TeamsPerProject: 2,
		TeamCapacity:    3,
		Projects: []domain.AssignmentTemplateProject{
			{ID: 101, Name: "项目甲"},
			{ID: 102, Name: "项目乙"},
		},
	}
}

func TestValidateAssignmentTemplateProjects(t *testing.T) {
	template := testTemplate()
	require.NoError(t, ValidateAssignmentTemplateProjects(template))

	// 项目数量不足
	require.Error(t, ValidateAssignmentTemplateProjects(&domain.AssignmentTemplate{
		Projects: []domain.AssignmentTemplateProject{{ID: 101, Name: "项目甲"}},
	}))

	// 项目名称重复
	template.Projects[1].Name = "项目甲"
	require.Error(t, ValidateAssignmentTemplateProjects(template))
}

func TestValidateAssignmentPlanTime(t *testing.T) {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	plan := &domain.AssignmentPlan{
		SubmissionStartTime: base,
		SubmissionEndTime:   base.Add(24 * time.Hour),
		ActiveStartTime:     base.Add(48 * time.Hour),
		ActiveEndTime:       base.Add(72 * time.Hour),
	}
	require.NoError(t, ValidateAssignmentPlanTime(plan))

	// 提交开始时间晚于提交结束时间
	bad := *plan
	bad.SubmissionStartTime = plan.SubmissionEndTime.Add(time.Hour)
	require.Error(t, ValidateAssignmentPlanTime(&bad))

	// 生效开始时间晚于生效结束时间
	bad = *plan
	bad.ActiveStartTime = plan.ActiveEndTime.Add(time.Hour)
	require.Error(t, ValidateAssignmentPlanTime(&bad))

	// 生效开始时间早于提交结束时间
	bad = *plan
	bad.ActiveStartTime = plan.SubmissionEndTime.Add(-time.Hour)
	require.Error(t, ValidateAssignmentPlanTime(&bad))
}

func TestValidateSubmissionWithTemplate(t *testing.T) {
	template := testTemplate()

	require.NoError(t, ValidateSubmissionWithTemplate(&domain.PreferenceSubmission{
		ProjectIDs: []int64{102, 101},
	}, template))

	cases := []struct {
		name       string
		projectIDs []int64
	}{
		{"志愿数量不足", []int64{101}},
		{"志愿数量过多", []int64{101, 102, 101}},
		{"志愿重复", []int64{101, 101}},
		{"包含不存在的项目", []int64{101, 999}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Error(t, ValidateSubmissionWithTemplate(&domain.PreferenceSubmission{
				ProjectIDs: c.projectIDs,
			}, template))
		})
	}
}

func TestValidateAssignmentResultWithTemplate(t *testing.T) {
	template := testTemplate()

	valid := &domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
			{ProjectID: 101, Seq: 2, MemberIDs: []int64{3}},
			{ProjectID: 102, Seq: 1, MemberIDs: []int64{4, 5, 6}},
			{ProjectID: 102, Seq: 2},
		},
	}
	require.NoError(t, ValidateAssignmentResultWithTemplate(valid, template))

	cases := []struct {
		name  string
		teams []domain.AssignmentResultTeam
	}{
		{"队伍数量不匹配", []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1},
		}},
		{"包含模板之外的项目", []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1},
			{ProjectID: 101, Seq: 2},
			{ProjectID: 999, Seq: 1},
			{ProjectID: 102, Seq: 2},
		}},
		{"队伍序号超出范围", []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1},
			{ProjectID: 101, Seq: 3},
			{ProjectID: 102, Seq: 1},
			{ProjectID: 102, Seq: 2},
		}},
		{"队伍序号重复", []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1},
			{ProjectID: 101, Seq: 1},
			{ProjectID: 102, Seq: 1},
			{ProjectID: 102, Seq: 2},
		}},
		{"队伍人数超过容量", []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2, 3, 4}},
			{ProjectID: 101, Seq: 2},
			{ProjectID: 102, Seq: 1},
			{ProjectID: 102, Seq: 2},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Error(t, ValidateAssignmentResultWithTemplate(&domain.AssignmentResult{Teams: c.teams}, template))
		})
	}
}

func TestValidateAssignmentResultWithSubmissions(t *testing.T) {
	submissions := []*domain.PreferenceSubmission{
		{UserID: 1},
		{UserID: 2},
		{UserID: 3},
	}

	require.NoError(t, ValidateAssignmentResultWithSubmissions(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
		},
		UnassignedIDs: []int64{3},
	}, submissions))

	// 队伍中的成员没有提交志愿
	require.Error(t, ValidateAssignmentResultWithSubmissions(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 4}},
		},
	}, submissions))

	// 未分配名单中的成员没有提交志愿
	require.Error(t, ValidateAssignmentResultWithSubmissions(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
			{ProjectID: 102, Seq: 1, MemberIDs: []int64{3}},
		},
		UnassignedIDs: []int64{4},
	}, submissions))

	// 提交了志愿的成员既没有被分配也不在未分配名单中
	require.Error(t, ValidateAssignmentResultWithSubmissions(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
		},
	}, submissions))
}

func TestValidIfExistsDuplicateMember(t *testing.T) {
	require.NoError(t, ValidIfExistsDuplicateMember(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
			{ProjectID: 102, Seq: 1, MemberIDs: []int64{3}},
		},
		UnassignedIDs: []int64{4},
	}))

	// 同一成员出现在两支队伍中
	require.Error(t, ValidIfExistsDuplicateMember(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
			{ProjectID: 102, Seq: 1, MemberIDs: []int64{2}},
		},
	}))

	// 已分配的成员出现在未分配名单中
	require.Error(t, ValidIfExistsDuplicateMember(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1}},
		},
		UnassignedIDs: []int64{1},
	}))
}
