package agent

import (
	"math"

	"qlearn/internal/qtable"
)

// ChooseAction picks an action epsilon-greedily for state.
func (a *Agent) ChooseAction(state qtable.State) qtable.Action {
	return a.choose(state)
}

// ChooseActionWithValue is ChooseAction that also returns the chosen action's
// current estimate.
func (a *Agent) ChooseActionWithValue(state qtable.State) (qtable.Action, float64) {
	action := a.choose(state)
	return action, a.table.Get(state, action)
}

func (a *Agent) choose(state qtable.State) qtable.Action {
	if a.rng.Float64() < a.epsilon {
		return a.actions[a.rng.Intn(len(a.actions))]
	}

	values := make([]float64, len(a.actions))
	maxQ := math.Inf(-1)
	for i, action := range a.actions {
		values[i] = a.table.Get(state, action)
		if values[i] > maxQ {
			maxQ = values[i]
		}
	}

	best := make([]int, 0, len(a.actions))
	for i, v := range values {
		if v == maxQ {
			best = append(best, i)
		}
	}
	switch len(best) {
	case 0:
		// every estimate is NaN
		return a.actions[a.rng.Intn(len(a.actions))]
	case 1:
		return a.actions[best[0]]
	}
	// Ties are broken uniformly, never by action order.
	return a.actions[best[a.rng.Intn(len(best))]]
}
