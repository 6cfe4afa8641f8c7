// Package agent implements a tabular Q-learning agent: epsilon-greedy action
// selection over a sparse Q-table, the one-step Q-learning update, and named
// checkpoints of the whole table.
//
// An Agent is not safe for concurrent use. Callers that share one across
// goroutines must serialise ChooseAction, Learn and the checkpoint calls.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"qlearn/internal/qtable"
	"qlearn/internal/storage"
)

// BestPolicyCheckpoint is the checkpoint Learn writes whenever a transition
// reward beats every reward seen before.
const BestPolicyCheckpoint = "best_policy"

var ErrInvalidConfig = errors.New("invalid agent config")

type Config struct {
	Actions []qtable.Action
	Epsilon float64
	Alpha   float64
	Gamma   float64

	// Rand drives exploration and tie breaking. A time-seeded source is used
	// when nil.
	Rand   *rand.Rand
	Store  storage.Store
	Logger *slog.Logger
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if len(c.Actions) == 0 {
		return fmt.Errorf("%w: action set is empty", ErrInvalidConfig)
	}
	seen := make(map[qtable.Action]struct{}, len(c.Actions))
	for _, a := range c.Actions {
		if _, dup := seen[a]; dup {
			return fmt.Errorf("%w: duplicate action %q", ErrInvalidConfig, a)
		}
		seen[a] = struct{}{}
	}
	if math.IsNaN(c.Epsilon) || c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v outside [0,1]", ErrInvalidConfig, c.Epsilon)
	}
	if math.IsNaN(c.Alpha) || c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %v outside (0,1]", ErrInvalidConfig, c.Alpha)
	}
	if math.IsNaN(c.Gamma) || c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("%w: gamma %v outside [0,1]", ErrInvalidConfig, c.Gamma)
	}
	if c.Store == nil {
		return fmt.Errorf("%w: checkpoint store is required", ErrInvalidConfig)
	}
	return nil
}

type Agent struct {
	actions []qtable.Action
	epsilon float64
	alpha   float64
	gamma   float64

	table      *qtable.Table
	bestReward float64

	rng    *rand.Rand
	store  storage.Store
	logger *slog.Logger
}

// New builds an agent with an empty table. The store must already be
// initialised.
func New(cfg Config) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		actions:    append([]qtable.Action(nil), cfg.Actions...),
		epsilon:    cfg.Epsilon,
		alpha:      cfg.Alpha,
		gamma:      cfg.Gamma,
		table:      qtable.New(),
		bestReward: math.Inf(-1),
		rng:        rng,
		store:      cfg.Store,
		logger:     logger,
	}, nil
}

// Actions returns a copy of the action set in construction order.
func (a *Agent) Actions() []qtable.Action {
	return append([]qtable.Action(nil), a.actions...)
}

// Value is the current estimate for (state, action), zero when unseen.
func (a *Agent) Value(state qtable.State, action qtable.Action) float64 {
	return a.table.Get(state, action)
}

// Entries returns every stored estimate.
func (a *Agent) Entries() []qtable.Entry {
	return a.table.Entries()
}

// BestReward is the highest transition reward seen so far, -Inf before the
// first Learn.
func (a *Agent) BestReward() float64 {
	return a.bestReward
}

func (a *Agent) Epsilon() float64 { return a.epsilon }
func (a *Agent) Alpha() float64 { return a.alpha }
func (a *Agent) Gamma() float64 { return a.gamma }

// RaiseBestReward lifts the watermark to r when r is higher; it never lowers
// it. Resumed agents use it to carry over the reward recorded in an existing
// best_policy checkpoint.
func (a *Agent) RaiseBestReward(r float64) {
	if r > a.bestReward {
		a.bestReward = r
	}
}
