// Package server hosts the HTTP surface: a JSON API over the score keeper
// and the embedded static app that renders it.
//
// The keeper is a single-writer state machine, so every handler takes the
// server mutex before touching it. The static handler serves the embedded
// assets and falls back to the entry document for navigation requests, which
// keeps client-side routes working offline.
package server
