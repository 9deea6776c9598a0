// Package engine is the boundary to the external numeric engine.
//
// An Engine resolves routines by (module, symbol) and runs them over a
// sequence of float64. A Host wraps one Engine behind a single exclusive
// lock: the engines this layer embeds are not assumed to be safe for
// concurrent use, so every call in the process goes through the same Host
// and is serialized there. Failures of any kind come back as
// *EvaluationError.
package engine
