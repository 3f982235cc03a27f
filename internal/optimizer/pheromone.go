package optimizer

const (
	initialPheromone = 1.0
	pheromoneFloor   = 1e-6 // 蒸发后的下限，保证任何 (学生, 团队) 组合都不会永远不可达
)

// pheromoneStore: 信息素矩阵 tau[学生下标][团队下标]
// 这是唯一跨迭代存续并被修改的状态，由 Optimizer 实例持有，
// 不同的 Optimizer 实例之间互不影响
type pheromoneStore struct {
	tau [][]float64
}

func newPheromoneStore(studentCount int, teamCount int) *pheromoneStore {
	tau := make([][]float64, studentCount)
	for i := range tau {
		tau[i] = make([]float64, teamCount)
		for j := range tau[i] {
			tau[i][j] = initialPheromone
		}
	}
	return &pheromoneStore{tau: tau}
}

func (p *pheromoneStore) get(studentIdx int, teamID int) float64 {
	return p.tau[studentIdx][teamID]
}

// evaporate 对所有权重乘以 (1 - rho)，低于下限的权重提升到下限
// 每轮迭代只调用一次，且必须在强化之前
func (p *pheromoneStore) evaporate(rho float64) {
	for i := range p.tau {
		for j := range p.tau[i] {
			p.tau[i][j] *= 1 - rho
			if p.tau[i][j] < pheromoneFloor {
				p.tau[i][j] = pheromoneFloor
			}
		}
	}
}

// reinforce 对候选解中出现的每个 (学生, 团队) 组合增加 q * fitness
// 候选解中没有出现的组合不受影响
func (p *pheromoneStore) reinforce(sol *solution, q float64) {
	for _, t := range sol.teams {
		for _, m := range t.members {
			p.tau[m.idx][t.id] += q * sol.fitness
		}
	}
}
