package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/utils"
)

// 在内存中生成一批测试数据，对比蚁群算法和两个基准策略（完全随机分配、
// 按第一志愿贪心自选）的分配质量，不需要连接数据库

func generateSampleData(studentCount int, projectCount int, teamsPerProject int, teamCapacity int, seed int64) (*domain.AssignmentTemplate, []*domain.User, []*domain.PreferenceSubmission) {
	rng := rand.New(rand.NewSource(seed))

	at := &domain.AssignmentTemplate{
		ID:                   1,
		Name:                 "基准测试模板",
		TeamsPerProject:      int32(teamsPerProject),
		TeamCapacity:         int32(teamCapacity),
		MaxSameNationality:   2,
		UnlimitedNationality: "中国",
		Projects:             make([]domain.AssignmentTemplateProject, projectCount),
	}

	// 每个项目有一个基础吸引力，学生的志愿排序在此基础上加噪声产生，
	// 这样热门项目会被更多学生排在前面，更接近真实的志愿分布
	attractiveness := make([]float64, projectCount)
	for i := range at.Projects {
		at.Projects[i] = domain.AssignmentTemplateProject{
			ID:   int64(i + 1),
			Name: fmt.Sprintf("项目%d", i+1),
		}
		attractiveness[i] = rng.Float64()
	}

	users := make([]*domain.User, studentCount)
	submissions := make([]*domain.PreferenceSubmission, studentCount)

	belbinRoles := []string{
		"Plant", "Resource Investigator", "Co-ordinator", "Shaper",
		"Monitor Evaluator", "Teamworker", "Implementer", "Completer Finisher", "Specialist",
	}
	nationalities := []string{"中国", "德国", "意大利", "西班牙", "波兰", "法国", "荷兰", "印度"}

	for i := 0; i < studentCount; i++ {
		users[i] = &domain.User{
			ID:          int64(i + 1),
			Username:    fmt.Sprintf("student%d", i+1),
			FullName:    utils.GenerateRandomChineseName(),
			Role:        domain.RoleStudent,
			BelbinRole:  belbinRoles[rng.Intn(len(belbinRoles))],
			Nationality: nationalities[rng.Intn(len(nationalities))],
		}

		// 分数越高的项目排得越靠前
		scores := make([]float64, projectCount)
		order := make([]int, projectCount)
		for j := range scores {
			scores[j] = attractiveness[j] + rng.NormFloat64()*0.5
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})

		projectIDs := make([]int64, projectCount)
		for rank, j := range order {
			projectIDs[rank] = at.Projects[j].ID
		}

		submissions[i] = &domain.PreferenceSubmission{
			ID:               int64(i + 1),
			AssignmentPlanID: 1,
			UserID:           users[i].ID,
			ProjectIDs:       projectIDs,
		}
	}

	return at, users, submissions
}

func main() {
	var studentCount int
	var projectCount int
	var teamsPerProject int
	var teamCapacity int
	var antCount int
	var iterationCount int
	var seed int64

	flag.IntVar(&studentCount, "students", 60, "学生数量")
	flag.IntVar(&projectCount, "projects", 6, "项目数量")
	flag.IntVar(&teamsPerProject, "teams-per-project", 2, "每个项目的队伍数量")
	flag.IntVar(&teamCapacity, "capacity", 6, "队伍容量")
	flag.IntVar(&antCount, "ants", 50, "每轮候选解数量")
	flag.IntVar(&iterationCount, "iterations", 200, "迭代次数")
	flag.Int64Var(&seed, "seed", 42, "随机种子")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	at, users, submissions := generateSampleData(studentCount, projectCount, teamsPerProject, teamCapacity, seed)

	parameters := &optimizer.Parameters{
		Alpha:            1.0,
		Beta:             2.0,
		Rho:              0.1,
		Q:                1.0,
		PreferenceWeight: 0.5,
		AntCount:         int32(antCount),
		IterationCount:   int32(iterationCount),
		Seed:             seed,
	}

	o, err := optimizer.New(parameters, users, at, submissions)
	if err != nil {
		fmt.Fprintln(os.Stderr, "无法创建 optimizer:", err)
		os.Exit(1)
	}

	type row struct {
		name   string
		result *domain.AssignmentResult
	}

	rows := []row{
		{name: "随机分配", result: o.RandomBaseline(seed)},
		{name: "贪心自选", result: o.SelfSelectionBaseline(seed)},
	}

	acoResult, err := o.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "蚁群算法运行失败:", err)
		os.Exit(1)
	}
	rows = append(rows, row{name: "蚁群算法", result: acoResult})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "策略\t适应度\t平均满意度\t平均角色多样性\t项目均衡度\t已分配\t未分配")
	for _, r := range rows {
		metrics, err := o.Analyze(r.result)
		if err != nil {
			fmt.Fprintln(os.Stderr, "无法分析结果:", err)
			os.Exit(1)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\t%d\n",
			r.name,
			r.result.Fitness,
			metrics.AvgSatisfaction,
			metrics.AvgDiversity,
			metrics.ProjectBalance,
			metrics.AssignedCount,
			metrics.UnassignedCount,
		)
	}
	w.Flush()
}
