// Package navgrid provides 2D grid pathfinding with procedural maze and
// obstacle generation.
//
// A Grid is a dense field of cells positioned in world space, with a
// mutable walkability flag per cell as its only editing surface. Routes
// come from two entry points:
//
//   - FindPath: run A* to completion and get a Result.
//   - Stepper: advance the same search a batch of expansions at a time,
//     with per-cell progress callbacks, to drive UIs or debugging tools.
//
// Movement costs are integral (10 per orthogonal step, 14 per diagonal)
// with matching Manhattan and octile heuristics, so found paths are
// cost-optimal.
//
// Walkability content comes from the generators (GenerateMaze,
// GenerateRandomObstacles), from world-space blocked regions stamped
// through a RegionIndex, or from YAML scenario files loaded with
// LoadScenario.
package navgrid
