package optimizer

import (
	"math"
	"math/rand"
)

// 启发式值的正偏移量，保证启发式值恒大于零
// （如果启发式和信息素同时为零，构造时的归一化会出现除零）
const desirabilityEpsilon = 1e-6

// desirability 估计把该学生放进这个团队有多好，恒大于零
// 由偏好满意度和加入后的角色多样性按 PreferenceWeight 加权而成
func (o *Optimizer) desirability(s *student, t *team) float64 {
	sat := s.satisfaction(t.projectIdx)

	roles := make(map[string]struct{}, len(t.members)+1)
	for _, m := range t.members {
		roles[m.belbinRole] = struct{}{}
	}
	roles[s.belbinRole] = struct{}{}
	diversity := float64(len(roles)) / float64(t.capacity)

	w := o.parameters.PreferenceWeight
	return w*sat + (1-w)*diversity + desirabilityEpsilon
}

// newTeams 为一次构造创建全新的团队集合
// 团队按项目为主序排列，下标即信息素矩阵的列下标，任何候选解之间不共享团队对象
func (o *Optimizer) newTeams() []*team {
	teams := make([]*team, 0, o.teamCount)
	teamsPerProject := int(o.template.TeamsPerProject)
	for j := 0; j < o.teamCount; j++ {
		teams = append(teams, &team{
			id:         j,
			projectIdx: j / teamsPerProject,
			seq:        int32(j%teamsPerProject) + 1,
			capacity:   int(o.template.TeamCapacity),
		})
	}
	return teams
}

// constructSolution 构造一个完整的候选解
// 学生以均匀随机的顺序依次放置，每次放置按信息素和启发式加权随机选择团队；
// 构造过程只读取信息素，不修改
func (o *Optimizer) constructSolution(rng *rand.Rand) *solution {
	teams := o.newTeams()

	order := make([]*student, len(o.students))
	copy(order, o.students)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	maxSameNat := int(o.template.MaxSameNationality)
	unlimitedNat := o.template.UnlimitedNationality

	unassignedIDs := make([]int64, 0)

	for _, s := range order {
		// 先找满足全部约束的团队
		feasible := make([]*team, 0, len(teams))
		for _, t := range teams {
			if t.canAdd(s, maxSameNat, unlimitedNat) {
				feasible = append(feasible, t)
			}
		}

		// 没有的话，放宽国籍约束，退而求其次接受所有还有空位的团队
		if len(feasible) == 0 {
			for _, t := range teams {
				if len(t.members) < t.capacity {
					feasible = append(feasible, t)
				}
			}
		}

		// 连空位都没有，该学生只能落选，继续处理下一个学生
		if len(feasible) == 0 {
			unassignedIDs = append(unassignedIDs, s.userID)
			continue
		}

		// 选择权重 w = tau^alpha * eta^beta
		weights := make([]float64, len(feasible))
		total := 0.0
		for i, t := range feasible {
			w := math.Pow(o.tau.get(s.idx, t.id), o.parameters.Alpha) *
				math.Pow(o.desirability(s, t), o.parameters.Beta)
			weights[i] = w
			total += w
		}

		// 轮盘赌选择；权重之和下溢为零时退化为均匀随机选择
		var chosen *team
		if total == 0 {
			chosen = feasible[rng.Intn(len(feasible))]
		} else {
			// feasible 按团队下标升序排列，累积分布的遍历顺序因此是确定的
			r := rng.Float64() * total
			cumulative := 0.0
			for i, t := range feasible {
				cumulative += weights[i]
				if r <= cumulative {
					chosen = t
					break
				}
			}
			if chosen == nil {
				// 浮点累加误差导致没选中时兜底取最后一个
				chosen = feasible[len(feasible)-1]
			}
		}

		chosen.add(s)
	}

	return &solution{
		teams:         teams,
		fitness:       evaluate(teams),
		unassignedIDs: unassignedIDs,
	}
}

// evaluate 返回候选解的适应度：所有团队适应度的算术平均（空团队计为 0）
func evaluate(teams []*team) float64 {
	sum := 0.0
	for _, t := range teams {
		sum += t.fitness()
	}
	return sum / float64(len(teams))
}
