// Package state defines the game-state graph that the save subsystem
// persists, and the Source/Sink contracts through which the gameplay loop
// hands state over for saving and receives it back on load.
//
// The graph is a closed set of typed structs: strings, int64s, bools, and
// collections of those. Floats never appear - snapshot encoding forbids
// them, so all fractional game quantities (damage multipliers, percentages)
// are kept in integral units upstream of this package.
package state
