package optimizer

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/utils"
)

// Optimizer 用蚁群算法把提交了志愿的学生分配到各项目的团队中
//
// 信息素矩阵是唯一跨迭代存续的可变状态；每轮迭代构造 AntCount 个相互独立的候选解，
// 各候选解只读取信息素，全部构造完成后统一进行一次蒸发和强化。
// 强化采用精英策略：每轮只用本轮最优的候选解强化信息素
// （另一种做法是按各候选解自身的适应度全部强化，两者收敛行为差异很大，这里只用前者）
type Optimizer struct {
	parameters  *Parameters
	template    *domain.AssignmentTemplate
	students    []*student
	submissions []*domain.PreferenceSubmission // 仅做最后的校验使用
	teamCount   int
	tau         *pheromoneStore
}

func New(parameters *Parameters, users []*domain.User, template *domain.AssignmentTemplate, submissions []*domain.PreferenceSubmission) (*Optimizer, error) {
	// 参数不合法时必须在迭代开始前直接报错
	if err := validateParameters(parameters); err != nil {
		return nil, err
	}
	if err := validateTemplate(template); err != nil {
		return nil, err
	}

	// 项目 ID 到项目下标的映射
	projectIdxByID := make(map[int64]int, len(template.Projects))
	for i, project := range template.Projects {
		projectIdxByID[project.ID] = i
	}

	o := &Optimizer{
		parameters:  parameters,
		template:    template,
		students:    make([]*student, 0, len(submissions)),
		submissions: submissions,
		teamCount:   len(template.Projects) * int(template.TeamsPerProject),
	}

	// 只有提交了志愿的学生才会参与分配
	for _, submission := range submissions {
		var user *domain.User = nil
		for _, u := range users {
			if u.ID == submission.UserID {
				user = u
				break
			}
		}
		if user == nil {
			return nil, fmt.Errorf("用户 %d 不在传入的 users 数组中", submission.UserID)
		}

		// 志愿列表必须是模板中所有项目的一个排列
		if len(submission.ProjectIDs) != len(template.Projects) {
			return nil, fmt.Errorf("用户 %d 的志愿数量和模板中的项目数量不匹配", submission.UserID)
		}
		prefRank := make([]int, len(template.Projects))
		seen := make([]bool, len(template.Projects))
		for rank, projectID := range submission.ProjectIDs {
			idx, exists := projectIdxByID[projectID]
			if !exists {
				return nil, fmt.Errorf("用户 %d 的志愿中包含模板中不存在的项目 %d", submission.UserID, projectID)
			}
			if seen[idx] {
				return nil, fmt.Errorf("用户 %d 的志愿中项目 %d 出现了多次", submission.UserID, projectID)
			}
			seen[idx] = true
			prefRank[idx] = rank
		}

		o.students = append(o.students, &student{
			userID:      user.ID,
			idx:         len(o.students),
			prefRank:    prefRank,
			belbinRole:  user.BelbinRole,
			nationality: user.Nationality,
		})
	}

	o.tau = newPheromoneStore(len(o.students), o.teamCount)

	return o, nil
}

func validateParameters(p *Parameters) error {
	if p.Alpha < 0 {
		return fmt.Errorf("信息素影响指数不能为负数")
	}
	if p.Beta < 0 {
		return fmt.Errorf("启发式影响指数不能为负数")
	}
	if p.Rho <= 0 || p.Rho >= 1 {
		return fmt.Errorf("信息素蒸发率必须在 (0, 1) 范围内")
	}
	if p.Q <= 0 {
		return fmt.Errorf("信息素强化系数必须大于零")
	}
	if p.PreferenceWeight < 0 || p.PreferenceWeight > 1 {
		return fmt.Errorf("偏好满意度权重必须在 [0, 1] 范围内")
	}
	if p.AntCount < 1 {
		return fmt.Errorf("每轮候选解数量必须大于等于 1")
	}
	if p.IterationCount < 1 {
		return fmt.Errorf("迭代次数必须大于等于 1")
	}
	return nil
}

func validateTemplate(template *domain.AssignmentTemplate) error {
	// 满意度按志愿名次线性插值，至少需要两个项目
	if len(template.Projects) < 2 {
		return fmt.Errorf("模板中至少需要两个项目")
	}
	if template.TeamsPerProject < 1 {
		return fmt.Errorf("每个项目的团队数量必须大于等于 1")
	}
	if template.TeamCapacity < 1 {
		return fmt.Errorf("团队容量必须大于等于 1")
	}
	if template.MaxSameNationality < 1 {
		return fmt.Errorf("同一国籍成员上限必须大于等于 1")
	}
	return nil
}

// Run 执行完整的优化过程并返回找到的最优分配结果
// 不做提前终止，总是跑满配置的迭代次数；固定种子和参数时结果完全可复现
func (o *Optimizer) Run() (*domain.AssignmentResult, error) {
	ants := int(o.parameters.AntCount)

	bestFitness := math.Inf(-1)
	var bestSolution *solution

	for iter := 0; iter < int(o.parameters.IterationCount); iter++ {
		// 本轮的各候选解相互独立，可以并发构造
		// 每只蚂蚁使用由主种子和 (迭代, 蚂蚁) 下标派生的独立随机源，
		// 这样并发执行的结果和串行执行完全一致
		solutions := make([]*solution, ants)
		var wg sync.WaitGroup
		for a := 0; a < ants; a++ {
			wg.Add(1)
			go func(a int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(o.parameters.Seed + int64(iter*ants+a)))
				solutions[a] = o.constructSolution(rng)
			}(a)
		}
		// 同步屏障：信息素的蒸发和强化都会修改共享状态，
		// 必须等本轮所有构造和评估完成后才能开始
		wg.Wait()

		// 找到本轮最优的候选解
		iterBest := solutions[0]
		for _, sol := range solutions[1:] {
			if sol.fitness > iterBest.fitness {
				iterBest = sol
			}
		}

		// 先蒸发再强化
		o.tau.evaporate(o.parameters.Rho)
		o.tau.reinforce(iterBest, o.parameters.Q)

		// 更新全局最优解
		// 这里需要使用深拷贝，防止保留的最优解被后续迭代意外修改
		if iterBest.fitness > bestFitness {
			bestFitness = iterBest.fitness
			bestSolution = iterBest.clone()
		}

		if (iter+1)%10 == 0 {
			slog.Info("蚁群迭代进度", "iteration", iter+1, "bestFitness", bestFitness)
		}
	}

	result := o.toResult(bestSolution)

	// 还需要检查一下结果是否满足约束条件（调用 utils 包中的方法就可以了）
	if err := utils.ValidateAssignmentResultWithTemplate(result, o.template); err != nil {
		return nil, err
	}
	if err := utils.ValidateAssignmentResultWithSubmissions(result, o.submissions); err != nil {
		return nil, err
	}
	if err := utils.ValidIfExistsDuplicateMember(result); err != nil {
		return nil, err
	}

	return result, nil
}

// toResult 把内部候选解转换成对外的分配结果
func (o *Optimizer) toResult(sol *solution) *domain.AssignmentResult {
	result := &domain.AssignmentResult{
		Fitness:       sol.fitness,
		Teams:         make([]domain.AssignmentResultTeam, 0, len(sol.teams)),
		UnassignedIDs: append([]int64(nil), sol.unassignedIDs...),
	}

	for _, t := range sol.teams {
		memberIDs := make([]int64, 0, len(t.members))
		for _, m := range t.members {
			memberIDs = append(memberIDs, m.userID)
		}
		result.Teams = append(result.Teams, domain.AssignmentResultTeam{
			ProjectID: o.template.Projects[t.projectIdx].ID,
			Seq:       t.seq,
			MemberIDs: memberIDs,
		})
	}

	slices.Sort(result.UnassignedIDs)

	return result
}
