// Package handlers implements the HTTP handlers for the habits API.
//
// Handlers decode request bodies, delegate to the service layer, and
// translate domain errors into the JSON error envelope. They never reach
// past the service into storage, so the route layer stays backend-agnostic.
package handlers
