/*
Package netspec owns the configuration schema of a multi-component, transition-based neural-network trainer: the typed records, their defaults, their encodings and the checks that catch broken specs before a training run does.

# Concept

A MasterSpec is an ordered list of components. Each component reads fixed features from the input and linked features from the activations of components that ran before it, so the order of the list is the dependency order of the pipeline. Hyperparameters live in a GridPoint whose unset fields read the trainer's defaults, and a TrainTarget says which components a training objective touches.

# Key Features

  - Presence-aware records: an unset field and a field set to its default are different, and both survive every encoding.
  - Codecs: JSON, YAML and the protobuf binary wire format (package codec).
  - Referential validation: component names, linked source order, channel bounds, resource references and module selectors checked against a registry.
  - Pluggable storage: memory, files, Redis, SQLite and read-only markdown workspaces behind one SpecStore port.

# Usage

A Catalog pairs a store with validation, rendering and change notification.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/netspec"
		"github.com/aretw0/netspec/internal/validator"
		"github.com/aretw0/netspec/pkg/dsl"
	)

	func main() {
		// Specs are kept as YAML files under ./specs
		cat, err := netspec.New("./specs")
		if err != nil {
			log.Fatal(err)
		}

		ms := dsl.New().
			Add("tagger").TransitionSystem("tagger").Network("FeedForwardNetwork").Actions(45).
			Fixed("words", "input.word", 64, 10000, 1).
			Add("parser").TransitionSystem("arc-standard").Network("FeedForwardNetwork").Actions(93).
			Linked("tagger", "input.focus", 32, 1, "identity", "layer_0").
			Spec()

		ctx := context.Background()
		if err := cat.Put(ctx, "en", ms); err != nil {
			for _, issue := range validator.Issues(err) {
				fmt.Println(issue)
			}
			log.Fatal(err)
		}

		chart, err := cat.Graph(ctx, "en")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(chart)
	}
*/
package netspec
