// Package exec runs external tools such as the PlantUML renderer.
//
// Commands are run through an Executor, which ties the process lifetime to a
// context and reports a missing binary as ErrNotInstalled:
//
//	executor := exec.NewExecutor(nil)
//	err := exec.NewCommand(executor, "java").
//		WithArgs("-jar", jar, "-tsvg", source).
//		WithSpinner("Rendering diagrams").
//		Run(ctx)
//
// Without a spinner, a tool's output can be passed through LineWriters, which
// tag each line with the tool name and colour stderr apart from stdout.
//
// Tests replace the process constructor with a helper process, so no real
// tool has to be installed.
package exec
