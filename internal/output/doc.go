// Package output prints the user-facing messages of the quill CLI.
//
// # Usage
//
//	output.Success("Generated 14 schema file(s) in schema")
//	output.Info("Rendering diagrams")
//	output.Step("materials.plantuml")
//	output.Warning("No examples found in examples")
//	output.Error("material.yaml: document does not match schema")
//
// Verbose messages only print after SetVerbose(true), which the root
// command calls for --verbose:
//
//	output.Verbose("Loading definitions from data")
//
// # Styling
//
// Messages are styled with lipgloss:
//
//   - Success: 🪶 green bold
//   - Error: ❌ red bold
//   - Warning: ⚠️ yellow
//   - Info: ℹ️ cyan
//   - Step: indented gray
//   - Verbose: 🔍 gray (when enabled)
//
// Engine packages log through internal/logger instead; output is only used
// by the commands.
package output
