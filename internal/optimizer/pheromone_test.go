package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPheromoneStore(t *testing.T) {
	store := newPheromoneStore(3, 4)

	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, initialPheromone, store.get(i, j), 1e-9)
		}
	}
}

func TestPheromoneEvaporate(t *testing.T) {
	store := newPheromoneStore(2, 2)

	store.evaporate(0.1)
	require.InDelta(t, 0.9, store.get(0, 0), 1e-9)
	require.InDelta(t, 0.9, store.get(1, 1), 1e-9)

	// 反复蒸发后权重停在下限，不会变成 0
	for i := 0; i < 50; i++ {
		store.evaporate(0.9)
	}
	require.InDelta(t, pheromoneFloor, store.get(0, 0), 1e-12)
	require.InDelta(t, pheromoneFloor, store.get(1, 0), 1e-12)
}

func TestPheromoneReinforce(t *testing.T) {
	store := newPheromoneStore(3, 2)

	a := &student{userID: 1, idx: 0}
	b := &student{userID: 2, idx: 2}
	sol := &solution{
		teams: []*team{
			{id: 1, members: []*student{a, b}},
		},
		fitness: 0.5,
	}

	store.reinforce(sol, 2.0)

	// 只有候选解中出现的 (学生, 团队) 组合被强化
	require.InDelta(t, 2.0, store.get(0, 1), 1e-9)
	require.InDelta(t, 2.0, store.get(2, 1), 1e-9)
	require.InDelta(t, 1.0, store.get(0, 0), 1e-9)
	require.InDelta(t, 1.0, store.get(1, 1), 1e-9)
}
