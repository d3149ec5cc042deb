// Package stats computes summary statistics over a habit's log entries:
// current and longest streaks, completion counts and rate, and (for
// numeric habits) the average recorded value.
//
// What counts as a completed day depends on the habit type. Boolean habits
// treat any value of at least 1 as done. Numeric habits compare the value
// against the goal, or accept any positive value when no goal is set.
// A day is completed or not; several qualifying entries on the same day
// still count it once.
//
// Streaks run over consecutive calendar days. The current streak counts
// back from today, or from yesterday when today has no qualifying entry
// yet, so an unfinished today does not break a live streak.
package stats
