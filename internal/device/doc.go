// Package device pumps a rendering callback into an audio output.
//
// [Oto] plays through the system sound device via ebitengine/oto. Builds
// tagged headless replace it with a stub that always fails to start.
// [Headless] drives the callback from a ticker at real-time pace and
// discards the samples, which keeps the audio clock and every scheduled
// callback running on machines without a sound card.
//
// All backends share the same shape: Name, Start(render) and Close. The
// render callback fills interleaved stereo float32 frames.
package device
