package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStudentSatisfaction(t *testing.T) {
	s := &student{prefRank: []int{0, 1, 2, 3}}

	// 第一志愿为 1，最后一个志愿为 0，中间按名次线性插值
	require.InDelta(t, 1.0, s.satisfaction(0), 1e-9)
	require.InDelta(t, 2.0/3.0, s.satisfaction(1), 1e-9)
	require.InDelta(t, 1.0/3.0, s.satisfaction(2), 1e-9)
	require.InDelta(t, 0.0, s.satisfaction(3), 1e-9)
}

func TestTeamCanAddRespectsCapacity(t *testing.T) {
	tm := &team{capacity: 2}
	a := &student{userID: 1, nationality: "中国"}
	b := &student{userID: 2, nationality: "中国"}
	c := &student{userID: 3, nationality: "中国"}

	require.True(t, tm.canAdd(a, 2, "中国"))
	tm.add(a)
	require.True(t, tm.canAdd(b, 2, "中国"))
	tm.add(b)

	// 满员后谁都不能再加入
	require.False(t, tm.canAdd(c, 2, "中国"))
}

func TestTeamCanAddRespectsNationalityCap(t *testing.T) {
	tm := &team{capacity: 5}
	tm.add(&student{userID: 1, nationality: "德国"})
	tm.add(&student{userID: 2, nationality: "德国"})

	// 已有两名德国学生，上限为 2 时第三名德国学生不能加入
	require.False(t, tm.canAdd(&student{userID: 3, nationality: "德国"}, 2, "中国"))

	// 其他国籍不受影响
	require.True(t, tm.canAdd(&student{userID: 4, nationality: "法国"}, 2, "中国"))

	// 不受限国籍的学生不受国籍上限约束
	tm.add(&student{userID: 5, nationality: "中国"})
	tm.add(&student{userID: 6, nationality: "中国"})
	require.True(t, tm.canAdd(&student{userID: 7, nationality: "中国"}, 2, "中国"))
}

func TestTeamScores(t *testing.T) {
	tm := &team{projectIdx: 0, capacity: 4}

	// 空团队的各项分数都是 0
	require.Zero(t, tm.satisfactionScore())
	require.Zero(t, tm.diversityScore())
	require.Zero(t, tm.fitness())

	// 两人都被分到第一志愿，角色一个重复
	tm.add(&student{prefRank: []int{0, 1}, belbinRole: "Plant"})
	tm.add(&student{prefRank: []int{0, 1}, belbinRole: "Plant"})
	tm.add(&student{prefRank: []int{1, 0}, belbinRole: "Shaper"})

	require.InDelta(t, 2.0/3.0, tm.satisfactionScore(), 1e-9)
	require.InDelta(t, 2.0/3.0, tm.diversityScore(), 1e-9)
	require.InDelta(t, 2.0/3.0, tm.fitness(), 1e-9)

	// 所有成员角色互不相同时多样性为 1
	allDistinct := &team{projectIdx: 0, capacity: 3}
	allDistinct.add(&student{prefRank: []int{0, 1}, belbinRole: "Plant"})
	allDistinct.add(&student{prefRank: []int{0, 1}, belbinRole: "Shaper"})
	allDistinct.add(&student{prefRank: []int{0, 1}, belbinRole: "Coordinator"})
	require.InDelta(t, 1.0, allDistinct.diversityScore(), 1e-9)
}

func TestSolutionCloneIsDeep(t *testing.T) {
	a := &student{userID: 1}
	sol := &solution{
		teams: []*team{
			{id: 0, projectIdx: 0, seq: 1, capacity: 3, members: []*student{a}},
		},
		fitness:       0.5,
		unassignedIDs: []int64{9},
	}

	cloned := sol.clone()

	// 修改原解不应该影响克隆出来的解
	sol.teams[0].add(&student{userID: 2})
	sol.unassignedIDs[0] = 8

	require.Len(t, cloned.teams[0].members, 1)
	require.Equal(t, int64(9), cloned.unassignedIDs[0])
	require.InDelta(t, 0.5, cloned.fitness, 1e-9)
}
