package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"qlearn/internal/config"
	"qlearn/pkg/qlearn"

	"github.com/dustin/go-humanize"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "config":
		return runConfig(ctx, args[1:])
	case "checkpoints":
		return runCheckpoints(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "select":
		return runSelect(ctx, args[1:])
	case "learn":
		return runLearn(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type commonFlags struct {
	configPath *string
	storeKind  *string
	storePath  *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "config file path (default: ./config.yaml or $XDG_CONFIG_HOME/qlearn/config.yaml)"),
		storeKind:  fs.String("store", "", "override store backend: memory|file|sqlite"),
		storePath:  fs.String("store-path", "", "override checkpoint directory (file) or database path (sqlite)"),
	}
}

func (c commonFlags) open(ctx context.Context) (*qlearn.Client, error) {
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		return nil, err
	}
	if *c.storeKind != "" {
		cfg.Store.Kind = *c.storeKind
	}
	if *c.storePath != "" {
		cfg.Store.Path = *c.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	return qlearn.Open(ctx, qlearn.OptionsFromConfig(cfg, logger))
}

func runConfig(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	out := fs.String("out", "config.yaml", "path of the config file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*out); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *out)
	}
	if err := config.DefaultConfig().Write(*out); err != nil {
		return err
	}
	fmt.Printf("wrote config=%s\n", *out)
	return nil
}

func runCheckpoints(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkpoints", flag.ContinueOnError)
	common := addCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "emit checkpoint list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	infos, err := client.Checkpoints(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(infos)
	}
	if len(infos) == 0 {
		fmt.Println("no checkpoints found")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("name=%s entries=%s saved=%s id=%s\n",
			info.Name, humanize.Comma(int64(info.EntryCount)), savedAgo(info.CreatedAtUTC), info.ID)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", qlearn.BestPolicyCheckpoint, "checkpoint name")
	limit := fs.Int("limit", 20, "max entries to print, highest value first (0 prints all)")
	jsonOut := fs.Bool("json", false, "emit the checkpoint as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit < 0 {
		return errors.New("limit must be >= 0")
	}

	client, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	checkpoint, err := client.Checkpoint(ctx, *name)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(checkpoint)
	}

	best := "n/a"
	if checkpoint.BestReward != nil {
		best = fmt.Sprintf("%g", *checkpoint.BestReward)
	}
	fmt.Printf("checkpoint=%s id=%s saved=%s entries=%s best_reward=%s actions=%s\n",
		checkpoint.Name, checkpoint.ID, savedAgo(checkpoint.CreatedAtUTC),
		humanize.Comma(int64(len(checkpoint.Entries))), best, strings.Join(checkpoint.Actions, ","))

	if err := client.LoadQ(ctx, *name); err != nil {
		return err
	}
	entries := client.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if *limit > 0 && len(entries) > *limit {
		entries = entries[:*limit]
	}
	for _, e := range entries {
		fmt.Printf("state=%s action=%s value=%.6f\n", e.State, e.Action, e.Value)
	}
	return nil
}

func runSelect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	common := addCommonFlags(fs)
	stateText := fs.String("state", "", "comma separated state, e.g. 1,0,2")
	checkpoint := fs.String("checkpoint", qlearn.BestPolicyCheckpoint, "checkpoint to load before selecting (empty or missing uses an empty table)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *checkpoint != "" {
		// a missing checkpoint selects from an empty table
		if err := client.LoadQ(ctx, *checkpoint); err != nil && !errors.Is(err, qlearn.ErrNotFound) {
			return err
		}
	}
	state := qlearn.ParseState(*stateText)
	action, value := client.ChooseActionWithValue(state)
	fmt.Printf("state=%s action=%s value=%.6f\n", state, action, value)
	for _, a := range client.Actions() {
		fmt.Printf("  %s=%.6f\n", a, client.Value(state, a))
	}
	return nil
}

func runLearn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("learn", flag.ContinueOnError)
	common := addCommonFlags(fs)
	stateText := fs.String("state", "", "comma separated state the action was taken in")
	actionName := fs.String("action", "", "action taken")
	reward := fs.Float64("reward", 0, "observed reward")
	nextText := fs.String("next", "", "comma separated state reached")
	checkpoint := fs.String("checkpoint", "latest", "working checkpoint loaded before and saved after the update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *actionName == "" {
		return errors.New("action is required")
	}

	client, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	action := qlearn.Action(*actionName)
	known := false
	for _, a := range client.Actions() {
		if a == action {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown action %q", *actionName)
	}

	ok, err := client.HasCheckpoint(ctx, *checkpoint)
	if err != nil {
		return err
	}
	if ok {
		if err := client.LoadQ(ctx, *checkpoint); err != nil {
			return err
		}
	}
	if best, err := client.Checkpoint(ctx, qlearn.BestPolicyCheckpoint); err == nil {
		if best.BestReward != nil {
			client.RaiseBestReward(*best.BestReward)
		}
	} else if !errors.Is(err, qlearn.ErrNotFound) {
		return err
	}

	before := client.BestReward()
	state := qlearn.ParseState(*stateText)
	if err := client.Learn(ctx, state, action, *reward, qlearn.ParseState(*nextText)); err != nil {
		return err
	}
	if err := client.SaveQ(ctx, *checkpoint); err != nil {
		return err
	}

	fmt.Printf("state=%s action=%s value=%.6f checkpoint=%s\n", state, action, client.Value(state, action), *checkpoint)
	if client.BestReward() > before {
		fmt.Printf("new best policy saved reward=%g\n", client.BestReward())
	}
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", "", "checkpoint name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("name is required")
	}

	client, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.DeleteCheckpoint(ctx, *name); err != nil {
		return err
	}
	fmt.Printf("deleted checkpoint=%s\n", *name)
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func savedAgo(createdAtUTC string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return strings.ReplaceAll(humanize.Time(t), " ", "_")
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: qlearnctl <config|checkpoints|show|select|learn|delete> [flags]", msg)
}
