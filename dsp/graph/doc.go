// Package graph implements a block-based real-time audio node graph with
// sample-accurate parameter automation.
//
// A [Context] owns the audio clock and a stereo [Destination]. Source nodes
// ([Oscillator], [BufferSource]) feed processing nodes ([Gain],
// [StereoPanner], [BiquadFilter]) which are connected towards the
// destination. Rendering pulls the graph one quantum (128 frames by
// default) at a time; the clock advances only as audio is rendered, so an
// offline caller can drive it deterministically with [Context.RenderFrames]
// while a device backend drives it through [Context.Render].
//
// Every [Param] keeps an automation timeline (set, linear ramp,
// exponential ramp, cancel, cancel-and-hold) evaluated per sample, plus
// optional audio-rate modulation inputs summed onto its value.
//
// All exported methods are safe for concurrent use with a single render
// goroutine. Callbacks registered with [Context.At] and
// [Oscillator.OnEnded] run on the render goroutine after the quantum in
// which they became due, outside the graph lock.
package graph
