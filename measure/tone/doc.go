// Package tone measures the dominant frequency, level and stereo position
// of rendered audio.
//
// [Analyze] windows a block with a Hann window, transforms it with
// algo-fft and refines the strongest bin by parabolic interpolation of the
// log-power spectrum. [Balance] inverts the equal-power pan law, so a
// voice rendered at bias b measures as b.
package tone
