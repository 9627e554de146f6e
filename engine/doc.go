// Package engine synthesizes the game's sound cues on top of a
// [graph.Context].
//
// An [Engine] owns one context and one master limiter (a fixed 0.2 gain in
// front of the destination). Every voice is wired through the limiter.
//
// Registered voices (superposition, navigation, tunneling, interference)
// are tracked by a [Registry]; starting one first tears down every
// registered voice, stopping its sources 100 ms ahead on the audio clock
// and disconnecting its nodes 200 ms ahead, so at most one registered
// voice group remains connected once that grace window has passed.
//
// One-shots (tunneling result, collapse, tutorial tones, feedback pings)
// carry their own stop time and disconnect themselves when they end.
// Collapse and tutorial tones still silence the registered voices first.
//
// The bias parameter is shared process-wide: [Engine.SetBalance] stores
// it and, when a bias-sensitive voice is playing, ramps that voice's
// channel gains to the equal-power targets over 100 ms.
//
// Builds are serialized by an internal mutex, so the engine may be driven
// from several goroutines while a device renders the graph.
package engine
