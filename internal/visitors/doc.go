// Package visitors simulates the page's visitor counter.
//
// The displayed number is derived from wall-clock time since a fixed launch
// epoch when the counter is mounted, then grows by one on a fixed interval
// while the page stays open. Nothing is persisted: every mount starts again
// from the time-derived baseline. A Hub pushes the count to WebSocket
// clients whenever it changes.
package visitors
