package planner

// Package planner translates a fleet ParameterSet into a mixed-integer
// scheduling model: weekly engine assignment, maintenance windows, spare
// purchases and leases over a fixed horizon, minimizing lease plus purchase
// cost. It also provides the greedy warm-start heuristic used to seed the
// solver with an initial assignment.
