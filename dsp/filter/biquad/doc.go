// Package biquad provides the second-order IIR filter runtime used by the
// graph's filter node.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Coefficients can be
// replaced between samples without clearing the delay line, which is what
// keeps cutoff sweeps free of clicks. Coefficient design lives in
// dsp/filter/design.
package biquad
