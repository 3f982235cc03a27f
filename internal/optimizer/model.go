package optimizer

// 蚁群算法参数
type Parameters struct {
	Alpha            float64 // 信息素影响指数
	Beta             float64 // 启发式影响指数
	Rho              float64 // 信息素蒸发率，取值范围 (0, 1)
	Q                float64 // 信息素强化系数
	PreferenceWeight float64 // 启发式中偏好满意度的权重（剩余权重归角色多样性），取值范围 [0, 1]
	AntCount         int32   // 每轮迭代中构造的候选解数量
	IterationCount   int32   // 迭代次数
	Seed             int64   // 主随机种子，固定种子可复现整次运行
}

// student: 参与组队的学生在算法内部的视图
type student struct {
	userID      int64
	idx         int   // 在 students 切片中的下标，用于索引信息素矩阵
	prefRank    []int // prefRank[p] 表示项目下标 p 在该学生偏好中的名次（0 为最喜欢）
	belbinRole  string
	nationality string
}

// satisfaction 返回该学生被分到某个项目时的满意度，取值范围 [0, 1]
// （第一志愿为 1，最后一个志愿为 0，中间按名次线性插值）
// 调用前必须保证偏好列表是模板中所有项目的一个排列，这一点由 New 校验
func (s *student) satisfaction(projectIdx int) float64 {
	n := len(s.prefRank)
	return float64(n-1-s.prefRank[projectIdx]) / float64(n-1)
}

// team: 候选解中的一个团队，只在单次构造过程中被修改
type team struct {
	id         int // 全局团队下标，同时是信息素矩阵的列下标
	projectIdx int
	seq        int32 // 同一项目下团队的序号，从 1 开始
	capacity   int
	members    []*student
}

// canAdd 检查当前是否还允许该学生加入这个团队
// 每次加入尝试都会基于团队当前的成员列表重新判断，不做缓存
func (t *team) canAdd(s *student, maxSameNationality int, unlimitedNationality string) bool {
	if len(t.members) >= t.capacity {
		return false
	}
	if s.nationality == unlimitedNationality {
		return true
	}
	sameCount := 0
	for _, m := range t.members {
		if m.nationality == s.nationality {
			sameCount++
		}
	}
	return sameCount < maxSameNationality
}

func (t *team) add(s *student) {
	t.members = append(t.members, s)
}

// satisfactionScore 返回团队成员对所属项目满意度的平均值，空团队为 0
func (t *team) satisfactionScore() float64 {
	if len(t.members) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range t.members {
		sum += m.satisfaction(t.projectIdx)
	}
	return sum / float64(len(t.members))
}

// diversityScore 返回团队中不同贝尔宾角色的数量与团队人数之比，空团队为 0
func (t *team) diversityScore() float64 {
	if len(t.members) == 0 {
		return 0
	}
	roles := make(map[string]struct{}, len(t.members))
	for _, m := range t.members {
		roles[m.belbinRole] = struct{}{}
	}
	return float64(len(roles)) / float64(len(t.members))
}

// fitness 返回团队的适应度：偏好满意度与角色多样性各占一半
func (t *team) fitness() float64 {
	if len(t.members) == 0 {
		return 0
	}
	return 0.5*t.satisfactionScore() + 0.5*t.diversityScore()
}

// solution: 一次构造产生的完整候选解，只在单次构造和评估周期内存在
type solution struct {
	teams         []*team
	fitness       float64
	unassignedIDs []int64 // 没有任何团队能容纳的学生
}

// clone 深拷贝候选解，防止保留的全局最优解被后续迭代修改
func (sol *solution) clone() *solution {
	cloned := &solution{
		teams:         make([]*team, len(sol.teams)),
		fitness:       sol.fitness,
		unassignedIDs: append([]int64(nil), sol.unassignedIDs...),
	}
	for i, t := range sol.teams {
		cloned.teams[i] = &team{
			id:         t.id,
			projectIdx: t.projectIdx,
			seq:        t.seq,
			capacity:   t.capacity,
			members:    append([]*student(nil), t.members...),
		}
	}
	return cloned
}
