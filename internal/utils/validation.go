package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func ValidateAssignmentTemplateProjects(at *domain.AssignmentTemplate) error {
	// 至少需要两个项目，否则志愿排序没有意义
	if len(at.Projects) < 2 {
		return errors.New("模板中的项目数量不能少于 2 个")
	}

	// 检查项目名称是否有重复
	seen := make(map[string]bool)
	for i, project := range at.Projects {
		if seen[project.Name] {
			return fmt.Errorf("第 %d 个项目的名称和其他项目重复", i+1)
		}
		seen[project.Name] = true
	}

	return nil
}

func ValidateAssignmentPlanTime(plan *domain.AssignmentPlan) error {
	if plan.SubmissionStartTime.After(plan.SubmissionEndTime) {
		return fmt.Errorf("提交开始时间不能晚于提交结束时间")
	}

	if plan.ActiveStartTime.After(plan.ActiveEndTime) {
		return fmt.Errorf("生效开始时间不能晚于生效结束时间")
	}

	if plan.ActiveStartTime.Before(plan.SubmissionEndTime) {
		return fmt.Errorf("生效开始时间不能早于提交结束时间")
	}

	return nil
}

// ValidateSubmissionWithTemplate 检查提交的志愿排序是否恰好是模板中项目 ID 的一个排列
func ValidateSubmissionWithTemplate(submission *domain.PreferenceSubmission, template *domain.AssignmentTemplate) error {
	if len(submission.ProjectIDs) != len(template.Projects) {
		return errors.New("提交的志愿数量和模板中的项目数量不匹配")
	}

	seen := make(map[int64]bool)
	for i, projectID := range submission.ProjectIDs {
		if seen[projectID] {
			return fmt.Errorf("第 %d 个志愿和前面的志愿重复", i+1)
		}
		seen[projectID] = true

		exists := false
		for _, project := range template.Projects {
			if project.ID == projectID {
				exists = true
				break
			}
		}
		if !exists {
			return fmt.Errorf("第 %d 个志愿的项目不存在于模板中", i+1)
		}
	}

	return nil
}

func ValidateAssignmentResultWithTemplate(result *domain.AssignmentResult, template *domain.AssignmentTemplate) error {
	expectedTeams := len(template.Projects) * int(template.TeamsPerProject)
	if len(result.Teams) != expectedTeams {
		return errors.New("分配结果中的队伍数量和模板中的队伍数量不匹配")
	}

	// 检查每个项目的每个队伍序号都恰好出现一次
	seen := make(map[int64]map[int32]bool)
	for _, team := range result.Teams {
		// 找到模板中对应的项目
		var templateProject *domain.AssignmentTemplateProject = nil

		for i := range template.Projects {
			if template.Projects[i].ID == team.ProjectID {
				templateProject = &template.Projects[i]
			}
		}

		if templateProject == nil {
			return fmt.Errorf("分配结果中 id 为 %d 的项目不存在于模板中", team.ProjectID)
		}

		if team.Seq < 1 || team.Seq > template.TeamsPerProject {
			return fmt.Errorf("项目 %d 的队伍序号 %d 超出了模板中的范围", team.ProjectID, team.Seq)
		}

		if seen[team.ProjectID] == nil {
			seen[team.ProjectID] = make(map[int32]bool)
		}
		if seen[team.ProjectID][team.Seq] {
			return fmt.Errorf("项目 %d 的队伍序号 %d 出现了多次", team.ProjectID, team.Seq)
		}
		seen[team.ProjectID][team.Seq] = true

		if len(team.MemberIDs) > int(template.TeamCapacity) {
			return fmt.Errorf("项目 %d 的第 %d 支队伍的人数超过了模板中的队伍容量", team.ProjectID, team.Seq)
		}
	}

	return nil
}

func getSubmissionByUserID(submissions []*domain.PreferenceSubmission, userID int64) *domain.PreferenceSubmission {
	for _, submission := range submissions {
		if submission.UserID == userID {
			return submission
		}
	}
	return nil
}

func ValidateAssignmentResultWithSubmissions(result *domain.AssignmentResult, submissions []*domain.PreferenceSubmission) error {
	included := make(map[int64]bool)

	for _, team := range result.Teams {
		for _, memberID := range team.MemberIDs {
			if getSubmissionByUserID(submissions, memberID) == nil {
				return fmt.Errorf("项目 %d 的第 %d 支队伍中 id 为 %d 的成员没有提交志愿", team.ProjectID, team.Seq, memberID)
			}
			included[memberID] = true
		}
	}

	for _, userID := range result.UnassignedIDs {
		if getSubmissionByUserID(submissions, userID) == nil {
			return fmt.Errorf("未分配名单中 id 为 %d 的成员没有提交志愿", userID)
		}
		included[userID] = true
	}

	// 反过来，每个提交了志愿的成员都必须出现在结果中（被分配或者在未分配名单中）
	for _, submission := range submissions {
		if !included[submission.UserID] {
			return fmt.Errorf("id 为 %d 的成员提交了志愿但没有出现在分配结果中", submission.UserID)
		}
	}

	return nil
}

func ValidIfExistsDuplicateMember(result *domain.AssignmentResult) error {
	// 检查是否存在某个成员被分配到了多支队伍，或者既被分配又出现在未分配名单中
	seen := make(map[int64]bool)
	for _, team := range result.Teams {
		for _, memberID := range team.MemberIDs {
			if seen[memberID] {
				return fmt.Errorf("id 为 %d 的成员被分配到了多支队伍", memberID)
			}
			seen[memberID] = true
		}
	}

	for _, userID := range result.UnassignedIDs {
		if seen[userID] {
			return fmt.Errorf("id 为 %d 的成员已经被分配但仍然出现在未分配名单中", userID)
		}
	}

	return nil
}
