// Package todo defines tasks, filter modes, and pure list transformations.
//
// A persisted list is a JSON array of task records in list order:
//
//	[
//	  {"id": "0192f6c4-7a3e-7b4e-9d7c-2f6d1c3a9b10", "text": "Buy milk", "completed": true},
//	  {"id": "0192f6c4-8b11-7c02-a1e5-55b0e4d2c6aa", "text": "Walk dog", "completed": false}
//	]
//
// # Transformations
//
// Append, Toggle, Rename, Remove and ClearCompleted never modify their input;
// they return a new slice and report whether anything changed. Unmatched ids
// and blank text leave the list as it was.
//
// # Validation
//
// Decode validates against the embedded JSON Schema (draft 2020-12), then
// checks what the schema cannot express:
//   - ids are unique
//   - text is not blank after trimming
//
// If the schema cannot be compiled the minimal checks still run.
//
// # Filters
//
//   - "all": every task
//   - "active": tasks not completed
//   - "completed": completed tasks
package todo
