/*
Package ports defines the driven ports (interfaces) of the colloquy runtime.

These interfaces decouple the dialogue core from external implementations,
allowing it to work with various persistence backends, script sources and
story interpreters.

# Key Interfaces

  - SnapshotStore: persists and restores variable store snapshots.
  - ScriptSource: resolves a story script handle to its source text.
  - StoryInterpreter: an embedded narrative VM with observable globals.
  - FunctionDispatcher: runs the gameplay side effect behind an external function call.
  - DistributedLocker: serialises snapshot writes across server replicas.
*/
package ports
