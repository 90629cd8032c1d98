/*
Package domain contains the core model of the Fable runtime.

It defines the parsed form of story files, the GameState a play-through
mutates, and the errors and events shared by the parser, the registry and
the engine. This package is kept pure and free of I/O.

# Key Entities

  - Story / Block: a parsed story file and its named sections.
  - Node: TextRun, Conditional, Directive, Menu or Jump.
  - Predicate: boolean expressions over flags and counters.
  - Destination: the target of an option or a jump, local or cross-file.
  - GameState: flags and counters, owned by a single execution.
*/
package domain
