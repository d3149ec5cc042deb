// Package service implements the application layer of the habits service.
//
// The Service validates input, delegates persistence to a storage.Store,
// and enforces the relationship rules that span multiple records: parents
// must exist before sub-habits are attached, deleting a parent cascades to
// its sub-habits, and log or statistics requests for a missing habit fail
// with habit.ErrNotFound.
//
// The service adds no storage semantics of its own. It never retries a
// failed operation and never swallows an error; every fault reaches the
// caller as one of the habit package error shapes.
package service
