// Package pipeline orchestrates directive execution over front matter documents.
//
// The processor scans the schema for directive kinds, asks the schema package
// for a dependency-ordered processing plan, and runs one executor per directive
// in sequence. Each executor is a pure transform from an item array to a new
// item array; stage boundaries are strictly sequential, while per-item work
// inside a stage may fan out across a bounded worker pool.
package pipeline
