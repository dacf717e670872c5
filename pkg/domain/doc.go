/*
Package domain contains the core data model of the Colloquy dialogue runtime.

It defines the narrative variable types, the dialogue node graph and the
function/story payloads carried by specialised nodes. This package is kept
pure and free of I/O, following the same hexagonal split as the rest of the
module: persistence and interpreters live behind pkg/ports.

# Key Entities

  - Variable / Value: typed narrative state (Bool, Int, Float, String).
  - Node: a speaker line with ordered Choices, or a gate, mutation,
    external-function or external-story node.
  - Choice: a weak reference (node ID) to the next node; empty means the
    conversation ends there.
  - FunctionCall: the closed-enumeration side effect a node asks the host for.
  - Snapshot: a persisted copy of the live variable values.
*/
package domain
