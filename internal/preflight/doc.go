// Package preflight provides readiness checks for the external services and
// filesystem paths a pipeline run depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before starting the stages, so a doomed
//     run fails in seconds instead of halfway through the vision stages.
//   - The CLI "memograph config show" command uses individual check
//     functions to display collaborator health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
