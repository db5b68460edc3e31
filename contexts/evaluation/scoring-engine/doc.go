// Package scoringengine implements rating capture and weighted score
// aggregation inside the evaluation context.
//
// The module owns rating upserts, the weighted participant/project score
// computation with group propagation, and the ranked leaderboard read model.
// Criteria, participations and projects are read through projection ports;
// computed scores are written back through a score writer port.
package scoringengine
