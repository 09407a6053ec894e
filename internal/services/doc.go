// Package services defines the shared error taxonomy and context plumbing used
// by enrichment stages and their external collaborators.
//
// Every collaborator call site wraps failures with one of the sentinel errors
// so stage code can classify uniformly: record-level failures (parse errors,
// missing images, collaborator errors) are logged and skipped, while schema
// violations and configuration errors abort the stage.
package services
