// Package pkg holds the public libraries behind the plangraph command.
//
// # Overview
//
// Plangraph builds planning graphs for STRIPS problems and derives
// reachability heuristics from them. The packages layer as follows:
//
//  1. [planning] - fluents, literals, actions and problems
//  2. [plangraph] - layered graph construction, mutexes and heuristics
//  3. [io] - TOML, YAML and JSON problem files plus graph export
//  4. [render] - Graphviz and SVG rendering of a built graph
//  5. [pipeline] - cached build, evaluate and render runs
//  6. [cache], [observability], [errors], [buildinfo] - supporting infrastructure
//
// # Data flow
//
//	problem file
//	     ↓
//	[io] ParseProblem
//	     ↓
//	[plangraph] New, Fill
//	     ↓
//	heuristics / [render] output
//
// # Quick Start
//
//	p, _ := io.ImportProblem("have_cake.toml")
//	g, _ := plangraph.New(p, p.Initial, plangraph.DefaultOptions())
//	g.Fill(-1)
//	fmt.Println(g.HLevelSum())
//
// Most callers go through [pipeline.Runner], which adds caching and hooks.
package pkg
