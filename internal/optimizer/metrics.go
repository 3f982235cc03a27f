package optimizer

import (
	"fmt"
	"math"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

// TeamMetrics: 对一份分配结果的统计指标，用于基准对比报告
type TeamMetrics struct {
	AvgTeamSize     float64 // 平均团队人数
	MinTeamSize     int     // 最小团队人数
	MaxTeamSize     int     // 最大团队人数
	AvgSatisfaction float64 // 各团队偏好满意度的平均值
	AvgDiversity    float64 // 各团队角色多样性的平均值
	ProjectBalance  float64 // 各项目学生人数的均衡程度，1 表示完全均衡
	AssignedCount   int     // 被分配到团队的学生数量
	UnassignedCount int     // 落选的学生数量
}

// Analyze 计算分配结果的统计指标
// 结果中的成员必须都是该 Optimizer 已知的学生
func (o *Optimizer) Analyze(result *domain.AssignmentResult) (*TeamMetrics, error) {
	studentsByID := make(map[int64]*student, len(o.students))
	for _, s := range o.students {
		studentsByID[s.userID] = s
	}

	projectIdxByID := make(map[int64]int, len(o.template.Projects))
	for i, project := range o.template.Projects {
		projectIdxByID[project.ID] = i
	}

	metrics := &TeamMetrics{
		UnassignedCount: len(result.UnassignedIDs),
	}

	sizeSum := 0
	satisfactionSum := 0.0
	diversitySum := 0.0
	studentsPerProject := make(map[int64]int)

	for i, resultTeam := range result.Teams {
		projectIdx, exists := projectIdxByID[resultTeam.ProjectID]
		if !exists {
			return nil, fmt.Errorf("结果中的项目 %d 不存在于模板中", resultTeam.ProjectID)
		}

		t := &team{
			projectIdx: projectIdx,
			capacity:   int(o.template.TeamCapacity),
		}
		for _, memberID := range resultTeam.MemberIDs {
			s, exists := studentsByID[memberID]
			if !exists {
				return nil, fmt.Errorf("结果中的学生 %d 没有提交志愿", memberID)
			}
			t.add(s)
		}

		size := len(t.members)
		sizeSum += size
		if i == 0 || size < metrics.MinTeamSize {
			metrics.MinTeamSize = size
		}
		if size > metrics.MaxTeamSize {
			metrics.MaxTeamSize = size
		}
		satisfactionSum += t.satisfactionScore()
		diversitySum += t.diversityScore()
		studentsPerProject[resultTeam.ProjectID] += size
	}

	teamCount := len(result.Teams)
	if teamCount == 0 {
		return metrics, nil
	}

	metrics.AvgTeamSize = float64(sizeSum) / float64(teamCount)
	metrics.AvgSatisfaction = satisfactionSum / float64(teamCount)
	metrics.AvgDiversity = diversitySum / float64(teamCount)
	metrics.AssignedCount = sizeSum

	// 各项目人数的总体标准差相对于平均值的比例，越接近 0 越均衡
	if len(studentsPerProject) > 0 {
		avg := 0.0
		for _, count := range studentsPerProject {
			avg += float64(count)
		}
		avg /= float64(len(studentsPerProject))

		if avg > 0 {
			variance := 0.0
			for _, count := range studentsPerProject {
				variance += math.Pow(float64(count)-avg, 2)
			}
			variance /= float64(len(studentsPerProject))
			metrics.ProjectBalance = 1 - math.Sqrt(variance)/avg
		}
	}

	return metrics, nil
}
