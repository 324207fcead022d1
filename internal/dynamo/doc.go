// Package dynamo provides the numeric primitives shared by the fluid core.
//
// It holds the pieces every other package leans on:
//
//   - [ErrInvalidParameter] and [ErrNumericalInstability]: domain errors
//   - [ParamError]: wraps a rejected configuration value
//   - [ParallelFor]: partitions an index range across goroutines
//   - [Finite], [ClampSpeed]: helpers over gonum r3 vectors
//
// # Thread Safety
//
// Everything in this package is stateless and safe for concurrent use.
// [ParallelFor] returns only after every chunk has finished.
package dynamo
