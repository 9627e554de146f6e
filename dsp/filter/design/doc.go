// Package design provides RBJ-style biquad coefficient designers consumed
// by dsp/filter/biquad and the graph's filter node.
package design
