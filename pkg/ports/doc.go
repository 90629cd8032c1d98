/*
Package ports defines the driven ports (interfaces) of the Fable runtime.

These interfaces decouple the engine from where stories come from and where
their text goes, so the same story can be played from disk, Redis or memory
and rendered to a terminal, a JSON stream or a test recorder.

# Key Interfaces

  - StoryLoader: retrieves raw story files by id.
  - Watchable: notifies about changed story files (hot reload).
  - Renderer: receives the text spans produced by an execution.
*/
package ports
