// Package main is the entry point for the noteseq CLI
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/seqforge/noteseq/pkg/api"
	"github.com/seqforge/noteseq/pkg/converter"
	"github.com/seqforge/noteseq/pkg/midifile"
	"github.com/seqforge/noteseq/pkg/pianoroll"
	"github.com/seqforge/noteseq/pkg/sequence"
	"github.com/seqforge/noteseq/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile      string
	rollSteps       int
	stepsPerQuarter int
	serverPort      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "noteseq",
	Short: "Convert between MIDI, NoteSequence and pianoroll representations",
	Long: `noteseq is a tool for converting symbolic music between standard MIDI
files, NoteSequence JSON documents and fixed-grid pianoroll tensors.

Examples:
  noteseq midi2seq song.mid -o song.json
  noteseq seq2midi song.json -o song.mid
  noteseq midi2roll song.mid -o roll.json
  noteseq roll2seq roll.json -o song.json
  noteseq inspect song.mid
  noteseq tui
  noteseq serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var midi2seqCmd = &cobra.Command{
	Use:   "midi2seq <input.mid>",
	Short: "Convert a MIDI file to a NoteSequence JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runMidiToSeq,
}

var seq2midiCmd = &cobra.Command{
	Use:   "seq2midi <input.json>",
	Short: "Export a NoteSequence JSON document as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeqToMidi,
}

var midi2rollCmd = &cobra.Command{
	Use:   "midi2roll <input.mid>",
	Short: "Convert a MIDI file to a quantized pianoroll JSON tensor",
	Args:  cobra.ExactArgs(1),
	RunE:  runMidiToRoll,
}

var roll2seqCmd = &cobra.Command{
	Use:   "roll2seq <input.json>",
	Short: "Decode a pianoroll JSON tensor into a NoteSequence document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRollToSeq,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.mid>",
	Short: "Print a summary of a MIDI file's tempo, meter and tracks",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	midi2seqCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .json file path")
	seq2midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	roll2seqCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .json file path")

	midi2rollCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .json file path")
	midi2rollCmd.Flags().IntVar(&rollSteps, "steps", 0, "Number of steps in the roll (default: last note's end step)")
	midi2rollCmd.Flags().IntVar(&stepsPerQuarter, "steps-per-quarter", 4, "Quantization grid resolution")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", defaultPort(), "Server port (env NOTESEQ_PORT)")

	rootCmd.AddCommand(midi2seqCmd)
	rootCmd.AddCommand(seq2midiCmd)
	rootCmd.AddCommand(midi2rollCmd)
	rootCmd.AddCommand(roll2seqCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func defaultPort() int {
	if raw := os.Getenv("NOTESEQ_PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			return port
		}
	}
	return 8080
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func runMidiToSeq(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	f, err := midifile.ParseFile(input)
	if err != nil {
		return err
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		return err
	}
	if err := writeJSON(output, ns); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runSeqToMidi(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	var ns sequence.NoteSequence
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("failed to parse NoteSequence JSON: %w", err)
	}

	f, err := converter.SequenceToMidi(&ns)
	if err != nil {
		return err
	}
	if err := midifile.WriteFile(f, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runMidiToRoll(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	f, err := midifile.ParseFile(input)
	if err != nil {
		return err
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		return err
	}
	quantized, err := ns.Quantize(stepsPerQuarter)
	if err != nil {
		return err
	}

	steps := rollSteps
	if steps == 0 {
		steps = quantized.TotalQuantizedSteps
	}
	roll, err := pianoroll.FromSequence(quantized, steps)
	if err != nil {
		return err
	}
	if err := writeJSON(output, map[string]pianoroll.Roll{"roll": roll}); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d steps)\n", input, output, roll.Steps())
	return nil
}

func runRollToSeq(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")
	if output == input {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".seq.json"
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	var doc struct {
		Roll pianoroll.Roll `json:"roll"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse pianoroll JSON: %w", err)
	}

	if err := writeJSON(output, doc.Roll.Sequence()); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	input := args[0]

	f, err := midifile.ParseFile(input)
	if err != nil {
		return err
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", input)
	fmt.Printf("  pulses per quarter: %d\n", f.Header.PulsesPerQuarter)
	fmt.Printf("  tempo: %.1f qpm\n", f.Header.BeatsPerMinute)
	ts := ns.TimeSignatures[0]
	fmt.Printf("  time signature: %d/%d\n", ts.Numerator, ts.Denominator)
	fmt.Printf("  total time: %.2fs\n", ns.TotalTime)
	fmt.Printf("  tracks: %d (%d with notes)\n", len(f.Tracks), len(ns.Instruments()))
	for i, track := range f.Tracks {
		kind := "melodic"
		if track.IsPercussion {
			kind = "percussion"
		}
		fmt.Printf("    track %d: %d notes, program %d, %s\n", i, len(track.Notes), track.InstrumentProgram, kind)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting noteseq API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
