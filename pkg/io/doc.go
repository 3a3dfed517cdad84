// Package io reads planning problems from files and writes planning graphs
// and problems as JSON.
//
// # Problem Files
//
// Problems can be written in TOML, YAML or JSON. All three share one shape:
//
//	name = "have-cake"
//	fluents = ["Have(Cake)", "Eaten(Cake)"]
//	initial = ["Have(Cake)"]
//	goal = ["Have(Cake)", "Eaten(Cake)"]
//
//	[[actions]]
//	name = "Eat(Cake)"
//	preconditions = ["Have(Cake)"]
//	effects = ["~Have(Cake)", "Eaten(Cake)"]
//
// "initial" lists the fluents that hold in the initial state; all others are
// false. "fluents" is optional and only fixes the order of the state map.
// Literals are fluent names, negated with a leading "~".
//
// Use [ImportProblem] to read a file (the decoder is chosen by extension) or
// [ReadProblem] to decode from any io.Reader. Every decoded problem has been
// validated with [planning.Problem.Validate].
//
// # Graph Export
//
// [WriteGraphJSON] dumps every layer built so far: literals with their
// achievers, actions with preconditions and effects, and the mutex pairs of
// both layer kinds. [WriteProblem] writes a problem back in the JSON problem
// format; its output is stable and is what the cache hashes.
package io
