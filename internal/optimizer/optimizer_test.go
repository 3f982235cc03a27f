package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func testParameters() *Parameters {
	return &Parameters{
		Alpha:            1.0,
		Beta:             2.0,
		Rho:              0.1,
		Q:                1.0,
		PreferenceWeight: 0.5,
		AntCount:         10,
		IterationCount:   20,
		Seed:             42,
	}
}

// testTemplate 生成测试用的组队模板，项目 ID 从 101 开始
func testTemplate(projectCount int, teamsPerProject int32, teamCapacity int32, maxSameNationality int32, unlimitedNationality string) *domain.AssignmentTemplate {
	template := &domain.AssignmentTemplate{
		ID:                   1,
		Name:                 "测试模板",
		TeamsPerProject:      teamsPerProject,
		TeamCapacity:         teamCapacity,
		MaxSameNationality:   maxSameNationality,
		UnlimitedNationality: unlimitedNationality,
	}
	for i := 0; i < projectCount; i++ {
		template.Projects = append(template.Projects, domain.AssignmentTemplateProject{
			ID:   int64(101 + i),
			Name: string(rune('A' + i)),
		})
	}
	return template
}

func testUser(id int64, belbinRole string, nationality string) *domain.User {
	return &domain.User{
		ID:          id,
		BelbinRole:  belbinRole,
		Nationality: nationality,
	}
}

func testSubmission(userID int64, projectIDs ...int64) *domain.PreferenceSubmission {
	return &domain.PreferenceSubmission{
		UserID:     userID,
		ProjectIDs: projectIDs,
	}
}

// assignedIDs 收集结果中所有被分配到团队的学生 ID
func assignedIDs(result *domain.AssignmentResult) []int64 {
	ids := make([]int64, 0)
	for _, t := range result.Teams {
		ids = append(ids, t.MemberIDs...)
	}
	return ids
}

func TestNewValidatesParameters(t *testing.T) {
	template := testTemplate(2, 1, 4, 2, "中国")
	users := []*domain.User{testUser(1, "Plant", "中国")}
	submissions := []*domain.PreferenceSubmission{testSubmission(1, 101, 102)}

	cases := []struct {
		name   string
		mutate func(p *Parameters)
	}{
		{"alpha 为负数", func(p *Parameters) { p.Alpha = -0.1 }},
		{"beta 为负数", func(p *Parameters) { p.Beta = -0.1 }},
		{"rho 为零", func(p *Parameters) { p.Rho = 0 }},
		{"rho 为一", func(p *Parameters) { p.Rho = 1 }},
		{"q 为零", func(p *Parameters) { p.Q = 0 }},
		{"偏好权重超出上界", func(p *Parameters) { p.PreferenceWeight = 1.1 }},
		{"偏好权重为负数", func(p *Parameters) { p.PreferenceWeight = -0.1 }},
		{"候选解数量为零", func(p *Parameters) { p.AntCount = 0 }},
		{"迭代次数为零", func(p *Parameters) { p.IterationCount = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			parameters := testParameters()
			c.mutate(parameters)
			_, err := New(parameters, users, template, submissions)
			require.Error(t, err)
		})
	}
}

func TestNewValidatesTemplate(t *testing.T) {
	users := []*domain.User{testUser(1, "Plant", "中国")}
	submissions := []*domain.PreferenceSubmission{testSubmission(1, 101)}

	// 只有一个项目时无法按志愿名次插值满意度
	_, err := New(testParameters(), users, testTemplate(1, 1, 4, 2, "中国"), submissions)
	require.Error(t, err)

	template := testTemplate(2, 0, 4, 2, "中国")
	_, err = New(testParameters(), users, template, []*domain.PreferenceSubmission{testSubmission(1, 101, 102)})
	require.Error(t, err)
}

func TestNewValidatesSubmissions(t *testing.T) {
	template := testTemplate(3, 1, 4, 2, "中国")
	users := []*domain.User{testUser(1, "Plant", "中国")}

	cases := []struct {
		name       string
		submission *domain.PreferenceSubmission
	}{
		{"用户不在 users 中", testSubmission(2, 101, 102, 103)},
		{"志愿数量不匹配", testSubmission(1, 101, 102)},
		{"志愿包含不存在的项目", testSubmission(1, 101, 102, 999)},
		{"志愿中项目重复", testSubmission(1, 101, 102, 102)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(testParameters(), users, template, []*domain.PreferenceSubmission{c.submission})
			require.Error(t, err)
		})
	}
}

func TestRunAssignsEveryoneWhenCapacitySuffices(t *testing.T) {
	// 12 名学生，2 个项目各 2 个团队，每团队 3 人，总容量刚好是 12
	template := testTemplate(2, 2, 3, 2, "中国")

	roles := []string{"Plant", "Shaper", "Coordinator", "Implementer"}
	nationalities := []string{"中国", "德国", "法国"}
	users := make([]*domain.User, 0, 12)
	submissions := make([]*domain.PreferenceSubmission, 0, 12)
	for i := 0; i < 12; i++ {
		id := int64(i + 1)
		users = append(users, testUser(id, roles[i%len(roles)], nationalities[i%len(nationalities)]))
		if i%2 == 0 {
			submissions = append(submissions, testSubmission(id, 101, 102))
		} else {
			submissions = append(submissions, testSubmission(id, 102, 101))
		}
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	result, err := o.Run()
	require.NoError(t, err)

	require.Empty(t, result.UnassignedIDs)
	require.Len(t, result.Teams, 4)
	require.Len(t, assignedIDs(result), 12)
	for _, resultTeam := range result.Teams {
		require.LessOrEqual(t, len(resultTeam.MemberIDs), 3)
	}
	require.Greater(t, result.Fitness, 0.0)
	require.LessOrEqual(t, result.Fitness, 1.0)
}

func TestRunIsDeterministicWithFixedSeed(t *testing.T) {
	template := testTemplate(3, 1, 4, 2, "中国")

	roles := []string{"Plant", "Shaper", "Monitor Evaluator"}
	users := make([]*domain.User, 0, 9)
	submissions := make([]*domain.PreferenceSubmission, 0, 9)
	prefs := [][]int64{{101, 102, 103}, {102, 103, 101}, {103, 101, 102}}
	for i := 0; i < 9; i++ {
		id := int64(i + 1)
		users = append(users, testUser(id, roles[i%len(roles)], "中国"))
		submissions = append(submissions, testSubmission(id, prefs[i%len(prefs)]...))
	}

	run := func() *domain.AssignmentResult {
		o, err := New(testParameters(), users, template, submissions)
		require.NoError(t, err)
		result, err := o.Run()
		require.NoError(t, err)
		return result
	}

	// 信息素矩阵归单个实例所有，两个实例用同一种子必须得到完全一致的结果
	first := run()
	second := run()
	require.Equal(t, first, second)
}

func TestRunReportsUnassignedWhenCapacityExceeded(t *testing.T) {
	// 总容量只有 2，第三名学生必然落选
	template := testTemplate(2, 1, 1, 2, "中国")

	users := []*domain.User{
		testUser(1, "Plant", "中国"),
		testUser(2, "Shaper", "中国"),
		testUser(3, "Coordinator", "中国"),
	}
	submissions := []*domain.PreferenceSubmission{
		testSubmission(1, 101, 102),
		testSubmission(2, 102, 101),
		testSubmission(3, 101, 102),
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	result, err := o.Run()
	require.NoError(t, err)

	require.Len(t, result.UnassignedIDs, 1)
	require.Len(t, assignedIDs(result), 2)
}

func TestRunRespectsConstraintsAcrossSeeds(t *testing.T) {
	// 12 名学生、2 个项目各 2 个团队、容量 3，同国籍上限 1，"X" 不受限；
	// 换用不同种子反复运行，容量和国籍上限都不能被突破
	template := testTemplate(2, 2, 3, 1, "X")

	roles := []string{"Plant", "Shaper", "Coordinator", "Implementer"}
	restricted := []string{"A", "B", "C", "D", "E", "F"}
	users := make([]*domain.User, 0, 12)
	submissions := make([]*domain.PreferenceSubmission, 0, 12)
	for i := 0; i < 12; i++ {
		id := int64(i + 1)
		nationality := "X"
		if i < len(restricted) {
			nationality = restricted[i]
		}
		users = append(users, testUser(id, roles[i%len(roles)], nationality))
		if i%2 == 0 {
			submissions = append(submissions, testSubmission(id, 101, 102))
		} else {
			submissions = append(submissions, testSubmission(id, 102, 101))
		}
	}

	nationalityByID := make(map[int64]string, len(users))
	for _, user := range users {
		nationalityByID[user.ID] = user.Nationality
	}

	for seed := int64(1); seed <= 20; seed++ {
		parameters := testParameters()
		parameters.Seed = seed
		parameters.IterationCount = 5

		o, err := New(parameters, users, template, submissions)
		require.NoError(t, err)

		result, err := o.Run()
		require.NoError(t, err)

		require.Empty(t, result.UnassignedIDs)
		for _, resultTeam := range result.Teams {
			require.LessOrEqual(t, len(resultTeam.MemberIDs), 3)

			counts := make(map[string]int)
			for _, memberID := range resultTeam.MemberIDs {
				counts[nationalityByID[memberID]]++
			}
			for nationality, count := range counts {
				if nationality != "X" {
					require.LessOrEqual(t, count, 1)
				}
			}
		}
	}
}

func TestRunRelaxesNationalityCapBeforeDroppingStudents(t *testing.T) {
	// 4 名德国学生，每团队同国籍上限为 1，严格执行的话只能安排 2 人；
	// 容量足够时约束应该被放宽而不是让学生落选
	template := testTemplate(2, 1, 3, 1, "中国")

	roles := []string{"Plant", "Shaper", "Coordinator", "Implementer"}
	users := make([]*domain.User, 0, 4)
	submissions := make([]*domain.PreferenceSubmission, 0, 4)
	for i := 0; i < 4; i++ {
		id := int64(i + 1)
		users = append(users, testUser(id, roles[i], "德国"))
		submissions = append(submissions, testSubmission(id, 101, 102))
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	result, err := o.Run()
	require.NoError(t, err)

	require.Empty(t, result.UnassignedIDs)
	require.Len(t, assignedIDs(result), 4)
}

func TestRunFavorsDiverseRolesWhenPreferencesAreIdentical(t *testing.T) {
	// 所有学生志愿完全相同，满意度无法区分候选解，
	// 此时适应度完全由角色多样性驱动，最优解应该把重复角色拆开
	template := testTemplate(2, 1, 2, 4, "中国")

	users := []*domain.User{
		testUser(1, "Plant", "中国"),
		testUser(2, "Plant", "中国"),
		testUser(3, "Shaper", "中国"),
		testUser(4, "Shaper", "中国"),
	}
	submissions := make([]*domain.PreferenceSubmission, 0, 4)
	for id := int64(1); id <= 4; id++ {
		submissions = append(submissions, testSubmission(id, 101, 102))
	}

	parameters := testParameters()
	parameters.PreferenceWeight = 0.0
	parameters.IterationCount = 50

	o, err := New(parameters, users, template, submissions)
	require.NoError(t, err)

	result, err := o.Run()
	require.NoError(t, err)

	// 每个团队都应该拿到两个不同的角色
	rolesByID := map[int64]string{1: "Plant", 2: "Plant", 3: "Shaper", 4: "Shaper"}
	for _, resultTeam := range result.Teams {
		seen := make(map[string]struct{})
		for _, memberID := range resultTeam.MemberIDs {
			seen[rolesByID[memberID]] = struct{}{}
		}
		require.Len(t, seen, len(resultTeam.MemberIDs))
	}
}

func TestBaselinesProduceValidResults(t *testing.T) {
	template := testTemplate(2, 2, 3, 2, "中国")

	roles := []string{"Plant", "Shaper", "Coordinator"}
	users := make([]*domain.User, 0, 10)
	submissions := make([]*domain.PreferenceSubmission, 0, 10)
	for i := 0; i < 10; i++ {
		id := int64(i + 1)
		users = append(users, testUser(id, roles[i%len(roles)], "中国"))
		if i%2 == 0 {
			submissions = append(submissions, testSubmission(id, 101, 102))
		} else {
			submissions = append(submissions, testSubmission(id, 102, 101))
		}
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	for _, result := range []*domain.AssignmentResult{
		o.RandomBaseline(7),
		o.SelfSelectionBaseline(7),
	} {
		require.Empty(t, result.UnassignedIDs)
		require.Len(t, assignedIDs(result), 10)
		require.Len(t, result.Teams, 4)
		for _, resultTeam := range result.Teams {
			require.LessOrEqual(t, len(resultTeam.MemberIDs), 3)
		}
	}
}

func TestSelfSelectionBaselineHonorsFirstChoice(t *testing.T) {
	// 第一志愿容量充足时所有学生都应该进入第一志愿项目
	template := testTemplate(2, 1, 4, 2, "中国")

	users := []*domain.User{
		testUser(1, "Plant", "中国"),
		testUser(2, "Shaper", "中国"),
		testUser(3, "Coordinator", "中国"),
		testUser(4, "Implementer", "中国"),
	}
	submissions := []*domain.PreferenceSubmission{
		testSubmission(1, 101, 102),
		testSubmission(2, 101, 102),
		testSubmission(3, 102, 101),
		testSubmission(4, 102, 101),
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	result := o.SelfSelectionBaseline(1)

	firstChoiceByID := map[int64]int64{1: 101, 2: 101, 3: 102, 4: 102}
	for _, resultTeam := range result.Teams {
		for _, memberID := range resultTeam.MemberIDs {
			require.Equal(t, firstChoiceByID[memberID], resultTeam.ProjectID)
		}
	}
}

func TestAnalyze(t *testing.T) {
	template := testTemplate(2, 1, 4, 2, "中国")

	users := []*domain.User{
		testUser(1, "Plant", "中国"),
		testUser(2, "Plant", "中国"),
		testUser(3, "Shaper", "中国"),
		testUser(4, "Coordinator", "中国"),
	}
	submissions := []*domain.PreferenceSubmission{
		testSubmission(1, 101, 102),
		testSubmission(2, 101, 102),
		testSubmission(3, 102, 101),
		testSubmission(4, 102, 101),
	}

	o, err := New(testParameters(), users, template, submissions)
	require.NoError(t, err)

	// 所有人都在第一志愿项目中，满意度为 1
	result := &domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{
			{ProjectID: 101, Seq: 1, MemberIDs: []int64{1, 2}},
			{ProjectID: 102, Seq: 1, MemberIDs: []int64{3, 4}},
		},
	}

	metrics, err := o.Analyze(result)
	require.NoError(t, err)

	require.InDelta(t, 2.0, metrics.AvgTeamSize, 1e-9)
	require.Equal(t, 2, metrics.MinTeamSize)
	require.Equal(t, 2, metrics.MaxTeamSize)
	require.InDelta(t, 1.0, metrics.AvgSatisfaction, 1e-9)
	// 101 团队两人角色相同，102 团队两人角色不同
	require.InDelta(t, 0.75, metrics.AvgDiversity, 1e-9)
	// 两个项目人数相同，完全均衡
	require.InDelta(t, 1.0, metrics.ProjectBalance, 1e-9)
	require.Equal(t, 4, metrics.AssignedCount)
	require.Zero(t, metrics.UnassignedCount)

	// 结果中出现未知项目或未提交志愿的学生时报错
	_, err = o.Analyze(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{{ProjectID: 999, Seq: 1}},
	})
	require.Error(t, err)

	_, err = o.Analyze(&domain.AssignmentResult{
		Teams: []domain.AssignmentResultTeam{{ProjectID: 101, Seq: 1, MemberIDs: []int64{42}}},
	})
	require.Error(t, err)
}
