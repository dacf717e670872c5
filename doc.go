/*
Package colloquy is a runtime for branching, game-style dialogue.

A project declares typed narrative variables and a container of nodes,
organised in named groups. Nodes display lines, offer choices, gate on
variable conditions, mutate variables, request gameplay side effects from
the host, or hand control to an embedded Lua story that shares variables
with the store for as long as its session is open.

# Usage

Load a project, resolve a starting node and play it with a Runner:

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/colloquy"
	)

	func main() {
		eng, err := colloquy.New("./tavern.yaml")
		if err != nil {
			log.Fatal(err)
		}
		if err := eng.Validate(); err != nil {
			log.Fatal(err)
		}

		start, err := eng.Start("Bar", "")
		if err != nil {
			log.Fatal(err)
		}

		runner := &colloquy.Runner{Input: os.Stdin, View: myView{}}
		if err := runner.Run(context.Background(), eng, start); err != nil {
			log.Fatal(err)
		}
	}

Hosts that drive playback themselves use the primitives on
dialogue.Container (ResolveNext, Advance, Walk) together with Engine.Dispatch
and Engine.Delegate.
*/
package colloquy
