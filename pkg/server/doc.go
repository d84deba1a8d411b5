// Package server exposes the template system over HTTP: a JSON API for
// authoring (template CRUD, duplication, classification, stats), a resolve
// endpoint the rendering layer calls with a request context, Prometheus
// metrics, and a middleware that resolves the current request and hands the
// render plan to downstream handlers.
//
// The server is administrative glue around the engine. It holds no decision
// logic of its own; every response is a straight projection of store and
// engine results.
package server
