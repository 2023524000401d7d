// Package engine runs the autonomous coding-agent loop: it asks the model
// for one structured decision at a time, executes the chosen tool through the
// toolkit sandbox, folds the result back into the conversation, and repeats
// until the task is done, the step ceiling is hit, or the caller cancels.
//
// The loop is a small state graph. Each node takes the current State and
// returns a delta; the engine applies deltas in order and checkpoints the
// state after every cycle so interrupted jobs can resume.
//
// Quick Start:
//
//	pool := llmpool.NewFailover(backends...)
//	eng, err := engine.New(pool, engine.Options{Workdir: dir})
//	if err != nil { ... }
//	outcome, err := eng.Run(ctx, "build a react todo app")
package engine
