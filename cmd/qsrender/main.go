// Command qsrender renders engine voices offline and reports their spectra.
//
// Usage:
//
//	qsrender [flags] [voice[:variant] ...]
//
// Without arguments it renders every voice. Variants select the voice
// parameters: collapse:0|1, tutorial:left|right, tunnel-result:ok|fail,
// feedback:ok|fail.
//
// Examples:
//
//	qsrender superposition
//	qsrender -bias 0.9 -dur 1 superposition
//	qsrender -o out collapse:1 tunnel-result:fail
//	qsrender -list
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/quantum-sounds/engine"
	"github.com/cwbudde/quantum-sounds/measure/level"
	"github.com/cwbudde/quantum-sounds/measure/tone"
)

type voiceEntry struct {
	name   string
	kind   engine.Kind
	params engine.Params
}

var registry = []voiceEntry{
	{"superposition", engine.Superposition, engine.Params{}},
	{"navigation", engine.Navigation, engine.Params{}},
	{"tunneling", engine.Tunneling, engine.Params{}},
	{"tunnel-result:ok", engine.TunnelResult, engine.Params{Success: true}},
	{"tunnel-result:fail", engine.TunnelResult, engine.Params{}},
	{"interference", engine.Interference, engine.Params{}},
	{"collapse:0", engine.Collapse, engine.Params{State: 0}},
	{"collapse:1", engine.Collapse, engine.Params{State: 1}},
	{"tutorial:left", engine.Tutorial, engine.Params{Side: engine.Left}},
	{"tutorial:right", engine.Tutorial, engine.Params{Side: engine.Right}},
	{"feedback:ok", engine.Feedback, engine.Params{Success: true}},
	{"feedback:fail", engine.Feedback, engine.Params{}},
}

func main() {
	sampleRate := flag.Float64("sr", 44100, "sample rate in Hz")
	dur := flag.Float64("dur", 2, "rendered length in seconds")
	bias := flag.Float64("bias", 0.5, "balance bias in [0, 1] applied before the voice starts")
	seed := flag.Int64("seed", 1, "noise seed")
	outDir := flag.String("o", "", "write one WAV file per voice into this directory")
	list := flag.Bool("list", false, "list available voices")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qsrender [flags] [voice[:variant] ...]\n\n")
		fmt.Fprintf(os.Stderr, "Renders engine voices offline and prints their spectral peaks.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, renders every voice.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  qsrender superposition\n")
		fmt.Fprintf(os.Stderr, "  qsrender -bias 0.9 -dur 1 superposition\n")
		fmt.Fprintf(os.Stderr, "  qsrender -o out collapse:1 tunnel-result:fail\n")
		fmt.Fprintf(os.Stderr, "  qsrender -list\n")
	}
	flag.Parse()

	if *list {
		for _, e := range registry {
			fmt.Println(e.name)
		}
		return
	}
	if *dur <= 0 || *sampleRate <= 0 {
		fmt.Fprintf(os.Stderr, "error: -dur and -sr must be > 0\n")
		os.Exit(2)
	}

	entries := resolveEntries(flag.Args())
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "error: no matching voices\n")
		os.Exit(1)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	results := make([]result, 0, len(entries))
	for _, e := range entries {
		r, err := renderVoice(e, *sampleRate, *dur, *bias, *seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", e.name, err)
			continue
		}
		if *outDir != "" {
			path := filepath.Join(*outDir, strings.ReplaceAll(e.name, ":", "-")+".wav")
			if err := writeWAV(path, int(*sampleRate), r.left, r.right); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", e.name, err)
			}
		}
		results = append(results, r)
	}

	printReport(results)
}

func resolveEntries(names []string) []voiceEntry {
	if len(names) == 0 {
		return registry
	}

	var out []voiceEntry
	for _, name := range names {
		e, err := parseVoice(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v (use -list to see available)\n", err)
			continue
		}
		out = append(out, e)
	}
	return out
}

// parseVoice accepts a registry name, or a bare voice name which selects its
// first variant.
func parseVoice(name string) (voiceEntry, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range registry {
		if e.name == name {
			return e, nil
		}
	}

	kind, err := engine.ParseKind(name)
	if err != nil {
		return voiceEntry{}, err
	}
	for _, e := range registry {
		if e.kind == kind {
			return e, nil
		}
	}
	return voiceEntry{}, fmt.Errorf("no variant for voice %q", name)
}

type result struct {
	entry       voiceEntry
	left, right []float64
	l, r        tone.Report
	ls, rs      level.Stats
	balance     float64
}

// renderVoice plays e on a fresh offline engine.
func renderVoice(e voiceEntry, sampleRate, dur, bias float64, seed int64) (result, error) {
	eng := engine.New(engine.WithSampleRate(sampleRate), engine.WithSeed(seed))
	eng.Init()
	eng.SetBalance(bias)

	var err error
	if e.kind.OneShot() {
		err = eng.PlayOneShot(e.kind, e.params)
	} else {
		err = eng.StartVoice(e.kind, e.params)
	}
	if err != nil {
		return result{}, err
	}

	left, right := eng.Context().RenderFrames(int(math.Round(dur * sampleRate)))

	r := result{
		entry:   e,
		left:    left,
		right:   right,
		ls:      level.Calculate(left),
		rs:      level.Calculate(right),
		balance: tone.Balance(left, right),
	}
	if r.l, err = tone.Analyze(left, sampleRate); err != nil {
		return result{}, err
	}
	if r.r, err = tone.Analyze(right, sampleRate); err != nil {
		return result{}, err
	}
	return r, nil
}

func printReport(results []result) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Voice\tL Peak [Hz]\tL Peak [dB]\tR Peak [Hz]\tR Peak [dB]\tL RMS [dB]\tR RMS [dB]\tCrest\tBalance\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-----\t-----------\t-----------\t-----------\t-----------\t----------\t----------\t-----\t-------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.2f\t%.3f\n",
			r.entry.name,
			hz(r.l), db(r.l),
			hz(r.r), db(r.r),
			r.ls.RMSdB, r.rs.RMSdB,
			max(r.ls.Crest, r.rs.Crest),
			r.balance,
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func hz(r tone.Report) string {
	if math.IsInf(r.PeakDB, -1) {
		return "-"
	}
	return fmt.Sprintf("%.1f", r.PeakHz)
}

func db(r tone.Report) string {
	if math.IsInf(r.PeakDB, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", r.PeakDB)
}
