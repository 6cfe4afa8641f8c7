// Package qlearn is the importable entry point for embedding a tabular
// Q-learning agent in an external control loop:
//
//	client, err := qlearn.Open(ctx, qlearn.Options{
//		Actions: []string{"left", "right", "forward"},
//		Epsilon: 0.1, Alpha: 0.2, Gamma: 0.8,
//		StoreKind: "file", StorePath: "checkpoints",
//	})
//	...
//	action := client.ChooseAction(state)
//	// execute action, observe reward and next state
//	err = client.Learn(ctx, state, action, reward, next)
package qlearn

import (
	"context"
	"log/slog"
	"math/rand"

	"qlearn/internal/agent"
	"qlearn/internal/config"
	"qlearn/internal/model"
	"qlearn/internal/qtable"
	"qlearn/internal/storage"
)

type (
	State          = qtable.State
	Component      = qtable.Component
	Action         = qtable.Action
	Entry          = qtable.Entry
	Checkpoint     = model.Checkpoint
	CheckpointInfo = model.CheckpointInfo
	StorageError   = storage.Error
)

var (
	Int        = qtable.Int
	Float      = qtable.Float
	String     = qtable.String
	Bool       = qtable.Bool
	NewState   = qtable.NewState
	Ints       = qtable.Ints
	Strings    = qtable.Strings
	ParseState = qtable.ParseState

	ErrInvalidConfig = agent.ErrInvalidConfig
	ErrNotFound      = storage.ErrNotFound
	ErrCorrupt       = storage.ErrCorrupt
	ErrInvalidName   = storage.ErrInvalidName
)

const BestPolicyCheckpoint = agent.BestPolicyCheckpoint

type Options struct {
	Actions []string
	Epsilon float64
	Alpha   float64
	Gamma   float64
	// Seed fixes the exploration source; zero seeds from the clock.
	Seed int64

	StoreKind string
	StorePath string
	Logger    *slog.Logger
}

// OptionsFromConfig maps a loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Actions:   append([]string(nil), cfg.Actions...),
		Epsilon:   cfg.Epsilon,
		Alpha:     cfg.Alpha,
		Gamma:     cfg.Gamma,
		Seed:      cfg.Seed,
		StoreKind: cfg.Store.Kind,
		StorePath: cfg.Store.Path,
		Logger:    logger,
	}
}

// Client is an agent bound to an initialised checkpoint store.
type Client struct {
	*agent.Agent
	store storage.Store
}

func Open(ctx context.Context, opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	store, err := storage.NewStore(storeKind, opts.StorePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}

	actions := make([]qtable.Action, len(opts.Actions))
	for i, a := range opts.Actions {
		actions[i] = qtable.Action(a)
	}
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	a, err := agent.New(agent.Config{
		Actions: actions,
		Epsilon: opts.Epsilon,
		Alpha:   opts.Alpha,
		Gamma:   opts.Gamma,
		Rand:    rng,
		Store:   store,
		Logger:  opts.Logger,
	})
	if err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return &Client{Agent: a, store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Checkpoints lists stored checkpoints by name.
func (c *Client) Checkpoints(ctx context.Context) ([]CheckpointInfo, error) {
	infos, err := c.store.ListCheckpoints(ctx)
	if err != nil {
		return nil, storage.Wrap("list", "", err)
	}
	return infos, nil
}

// Checkpoint returns the raw stored checkpoint without loading it.
func (c *Client) Checkpoint(ctx context.Context, name string) (Checkpoint, error) {
	checkpoint, ok, err := c.store.GetCheckpoint(ctx, name)
	if err != nil {
		return Checkpoint{}, storage.Wrap("read", name, err)
	}
	if !ok {
		return Checkpoint{}, storage.Wrap("read", name, storage.ErrNotFound)
	}
	return checkpoint, nil
}

// HasCheckpoint reports whether name is stored.
func (c *Client) HasCheckpoint(ctx context.Context, name string) (bool, error) {
	_, ok, err := c.store.GetCheckpoint(ctx, name)
	if err != nil {
		return false, storage.Wrap("read", name, err)
	}
	return ok, nil
}

func (c *Client) DeleteCheckpoint(ctx context.Context, name string) error {
	return storage.Wrap("delete", name, c.store.DeleteCheckpoint(ctx, name))
}
