package agent

import (
	"context"

	"qlearn/internal/qtable"
)

// Learn folds one observed transition into the table.
//
// A state1 made only of integer components marks an absorbing state by the
// caller's convention; its reward is treated as 0. The first observation of a
// (state1, action1) pair stores the reward as is. Later observations apply
//
//	Q(s1,a1) += alpha * (reward + gamma*max_a Q(s2,a) - Q(s1,a1))
//
// When the reward beats every earlier reward the whole table is written to the
// best_policy checkpoint. A failed write is returned as a *storage.Error and
// leaves the watermark where it was.
func (a *Agent) Learn(ctx context.Context, state1 qtable.State, action1 qtable.Action, reward float64, state2 qtable.State) error {
	if state1.AllIntegers() {
		reward = 0
	}

	maxQNew := a.table.Max(state2, a.actions)
	if oldV, ok := a.table.Lookup(state1, action1); ok {
		a.table.Set(state1, action1, oldV+a.alpha*(reward+a.gamma*maxQNew-oldV))
	} else {
		a.table.Set(state1, action1, reward)
	}

	if reward > a.bestReward {
		if err := a.save(ctx, BestPolicyCheckpoint, reward); err != nil {
			return err
		}
		a.bestReward = reward
		a.logger.InfoContext(ctx, "new best policy saved",
			"checkpoint", BestPolicyCheckpoint,
			"reward", reward,
		)
	}
	return nil
}
