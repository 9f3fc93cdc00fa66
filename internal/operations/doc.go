// Package operations orchestrates the dataset refresh pipeline.
//
// A refresh is a sequence of steps with declared dependencies: load the
// raw monthly dataset, derive the spread and change metrics, build the
// aggregate summaries, and export the derived CSV and summary JSON.
// The Manager executes registered steps in dependency order with
// per-step timeouts and retry, and the StatusBroadcaster pushes a
// single consolidated snapshot to WebSocket clients after every state
// change.
//
// Steps communicate through the OperationState context: the load step
// stores the parsed records, derive replaces them with derived records,
// and the aggregate step stores the summary document the export step
// writes out.
package operations
