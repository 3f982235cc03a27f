package optimizer

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

// 本文件中的两个基线算法只用于和蚁群算法做效果对比（见 cmd/benchmark），
// 不参与正式的分配流程

// RandomBaseline 随机分配基线：以随机顺序处理学生，
// 在满足约束的团队中均匀随机挑一个；约束处理方式和蚁群构造相同
// （先放宽国籍约束，再接受落选）
func (o *Optimizer) RandomBaseline(seed int64) *domain.AssignmentResult {
	rng := rand.New(rand.NewSource(seed))
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
		feasible := make([]*team, 0, len(teams))
		for _, t := range teams {
			if t.canAdd(s, maxSameNat, unlimitedNat) {
				feasible = append(feasible, t)
			}
		}
		if len(feasible) == 0 {
			for _, t := range teams {
				if len(t.members) < t.capacity {
					feasible = append(feasible, t)
				}
			}
		}
		if len(feasible) == 0 {
			unassignedIDs = append(unassignedIDs, s.userID)
			continue
		}

		feasible[rng.Intn(len(feasible))].add(s)
	}

	return o.toResult(&solution{
		teams:         teams,
		fitness:       evaluate(teams),
		unassignedIDs: unassignedIDs,
	})
}

// SelfSelectionBaseline 模拟自由组队基线：学生优先进入第一志愿项目的团队
// （只看容量，不考虑角色搭配），第一志愿满员后进入任何还有空位的团队
func (o *Optimizer) SelfSelectionBaseline(seed int64) *domain.AssignmentResult {
	rng := rand.New(rand.NewSource(seed))
	teams := o.newTeams()

	order := make([]*student, len(o.students))
	copy(order, o.students)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	unassignedIDs := make([]int64, 0)

	for _, s := range order {
		// 第一志愿项目的下标
		topIdx := 0
		for idx, rank := range s.prefRank {
			if rank == 0 {
				topIdx = idx
				break
			}
		}

		var chosen *team
		for _, t := range teams {
			if t.projectIdx == topIdx && len(t.members) < t.capacity {
				chosen = t
				break
			}
		}
		if chosen == nil {
			for _, t := range teams {
				if len(t.members) < t.capacity {
					chosen = t
					break
				}
			}
		}
		if chosen == nil {
			unassignedIDs = append(unassignedIDs, s.userID)
			continue
		}

		chosen.add(s)
	}

	return o.toResult(&solution{
		teams:         teams,
		fitness:       evaluate(teams),
		unassignedIDs: unassignedIDs,
	})
}
