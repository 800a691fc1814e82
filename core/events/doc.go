// Package events defines the typed notifications that flow through the
// orchestrator's runtime loop.
//
// Device callbacks (capture, playback) and user interactions never mutate
// orchestrator state directly; they are wrapped into one of these events and
// pushed onto a single channel consumed by one goroutine. Event kinds are
// namespaced by origin:
//
//   - user_input.* for user-initiated interactions
//   - capture.*    for the speech-capture device lifecycle
//   - playback.*   for the speech-output device lifecycle
package events
