// Package implicit parses implicit relations F(x, y, t) = 0 and compiles them
// for evaluation over whole sample grids.
//
// The syntax is intended to be similar to math you'd write in your notes.
// "2x y" and "2xy" are both multiplications of three terms, "x^2 + y^2 = 25"
// is understood as "(x^2 + y^2) - (25) = 0", and "sin x" is "sin(x)". Only
// the variables x, y, and t, numeric literals, and a fixed set of functions
// and constants may appear; any other name is an error rather than a new
// variable.
//
// Parsed expressions are simplified, so "x*2 + 0" and "2x" give the same
// tree. Expressions compile to a Program that evaluates every point of a grid
// in one call using complex arithmetic, leaving the choice of what to do with
// imaginary parts to the caller.
package implicit
