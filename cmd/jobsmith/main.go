package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/forgelabs/jobsmith/config"
	"github.com/forgelabs/jobsmith/engine"
	"github.com/forgelabs/jobsmith/toolkit"
)

var rootCmd = &cobra.Command{
	Use:   "jobsmith",
	Short: "jobsmith - autonomous coding agent",
	Long:  "jobsmith runs coding tasks end to end: a model decides one tool action at a time, a sandbox executes it, and the finished project is packaged as a zip with a run report.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a coding task to completion",
	RunE:  runJob,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Resume a checkpointed job",
	Args:  cobra.ExactArgs(1),
	RunE:  resumeJob,
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List available scaffold recipes",
	Run:   listRecipes,
}

var (
	taskFlag    string
	jobDirFlag  string
	configFlag  string
	verboseFlag bool
)

func init() {
	runCmd.Flags().StringVarP(&taskFlag, "task", "t", "", "task description (required)")
	runCmd.Flags().StringVar(&jobDirFlag, "job-dir", "", "job directory (default jobs/<job-id>)")
	_ = runCmd.MarkFlagRequired("task")

	for _, cmd := range []*cobra.Command{runCmd, resumeCmd} {
		cmd.Flags().StringVarP(&configFlag, "config", "c", "jobsmith.yaml", "config file path")
		cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "print checkpoint and warning events")
	}

	rootCmd.AddCommand(runCmd, resumeCmd, recipesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runJob(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	eng, store, err := buildEngine(cfg, "", jobDirFlag)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("job %s: %s\n", eng.JobID(), taskFlag)
	done := renderEvents(eng)
	outcome, runErr := eng.Run(ctx, taskFlag)
	<-done
	return report(outcome, runErr)
}

func resumeJob(cmd *cobra.Command, args []string) error {
	jobID := args[0]
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	if !cfg.Checkpoints.Enabled {
		return fmt.Errorf("checkpoints are disabled in the config, nothing to resume")
	}
	store, err := engine.OpenCheckpointStore(cfg.Checkpoints.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.Load(jobID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("no checkpoint for job %q", jobID)
	}

	eng, _, err := buildEngineWithStore(cfg, jobID, "", store)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("resuming job %s at step %d: %s\n", jobID, state.Steps, state.Task)
	done := renderEvents(eng)
	outcome, runErr := eng.Resume(ctx, state)
	<-done
	return report(outcome, runErr)
}

func listRecipes(_ *cobra.Command, _ []string) {
	runner, err := toolkit.NewRunner(os.TempDir(), time.Minute)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	for _, r := range toolkit.NewScaffolder(runner, nil).Recipes() {
		fmt.Printf("%-16s %s\n", r.ID, r.Description)
	}
}

func buildEngine(cfg *config.Config, jobID, jobDir string) (*engine.Engine, *engine.CheckpointStore, error) {
	var store *engine.CheckpointStore
	if cfg.Checkpoints.Enabled {
		var err error
		store, err = engine.OpenCheckpointStore(cfg.Checkpoints.Path)
		if err != nil {
			// A broken checkpoint db degrades to an unpersisted run.
			fmt.Fprintln(os.Stderr, "warning: checkpoints unavailable:", err)
			store = nil
		}
	}
	eng, _, err := buildEngineWithStore(cfg, jobID, jobDir, store)
	return eng, store, err
}

func buildEngineWithStore(cfg *config.Config, jobID, jobDir string, store *engine.CheckpointStore) (*engine.Engine, *engine.CheckpointStore, error) {
	pool, err := cfg.BuildPool()
	if err != nil {
		return nil, nil, err
	}
	if jobID == "" {
		jobID = uuid.New().String()[:8]
	}
	if jobDir == "" {
		jobDir = filepath.Join(cfg.Workspace.Root, jobID)
	}
	opts := engine.Options{
		JobID:              jobID,
		Workdir:            jobDir,
		AllowedRoot:        cfg.Workspace.AllowedRoot,
		MaxSteps:           cfg.Limits.MaxSteps,
		CommandTimeout:     cfg.CommandTimeout(),
		NoScaffoldAutoDone: !cfg.ScaffoldAutoDone(),
		Checkpoints:        store,
	}
	eng, err := engine.New(pool, opts)
	if err != nil {
		return nil, nil, err
	}
	return eng, store, nil
}

// renderEvents prints the job event stream until the emitter closes.
func renderEvents(eng *engine.Engine) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range eng.Events() {
			switch ev.Kind {
			case engine.EventDecision:
				fmt.Printf("  -> %v\n", ev.Data["summary"])
			case engine.EventToolEnd:
				if ok, _ := ev.Data["ok"].(bool); !ok {
					fmt.Printf("     %v failed\n", ev.Data["tool"])
				}
			case engine.EventStepLimit:
				fmt.Printf("  !! step limit reached at %v steps\n", ev.Data["steps"])
			case engine.EventLoopDetected:
				fmt.Println("  !! repeated actions detected, steering the model")
			case engine.EventPackaged:
				fmt.Printf("  packaged %v (%v files)\n", ev.Data["zip"], ev.Data["files"])
			case engine.EventWarning:
				if verboseFlag {
					fmt.Printf("  warning: %v\n", ev.Data)
				}
			case engine.EventError:
				fmt.Printf("  error: %v\n", ev.Data["error"])
			case engine.EventCheckpoint:
				if verboseFlag {
					fmt.Printf("  checkpoint at step %v\n", ev.Data["steps"])
				}
			}
		}
	}()
	return done
}

func report(outcome *engine.Outcome, runErr error) error {
	if outcome == nil {
		return runErr
	}
	switch outcome.Kind {
	case engine.OutcomeDone:
		fmt.Printf("done in %d steps: %s\n", outcome.State.Steps, outcome.State.Reason)
	case engine.OutcomeStepLimit:
		fmt.Printf("stopped at the %d step ceiling; resume with: jobsmith resume %s\n",
			outcome.State.Steps, outcome.State.JobID)
	case engine.OutcomeCancelled:
		fmt.Printf("cancelled at step %d; resume with: jobsmith resume %s\n",
			outcome.State.Steps, outcome.State.JobID)
	case engine.OutcomeModelFailure:
		fmt.Printf("model failure at step %d: %v\n", outcome.State.Steps, outcome.Err)
	}
	if outcome.Artifact != nil {
		fmt.Printf("artifact: %s\nreport:   %s\n", outcome.Artifact.ZipPath, outcome.Artifact.ReportPath)
	}
	if outcome.Kind == engine.OutcomeModelFailure {
		return runErr
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
