// Package main is the entry point for the noteroll CLI
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/noteroll/pkg/api"
	"github.com/james-see/noteroll/pkg/converter"
	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
	"github.com/james-see/noteroll/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile      string
	kindName        string
	stepCount       int
	segmentCount    int
	splitCount      int
	minPitch        int
	maxPitch        int
	stepsPerQuarter int
	tempo           float64
	serverPort      int
)

// tensorFile is the on-disk JSON form of an encoded tensor.
type tensorFile struct {
	Shape  []int       `json:"shape"`
	Tensor [][]float64 `json:"tensor"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "noteroll",
	Short: "Encode note sequences into model tensors and back",
	Long: `noteroll is a codec between quantized note sequences (MIDI or JSON)
and the fixed-shape tensors consumed by generative sequence models.

Converter kinds:
  drums      polyphonic percussion, one-hot power-set model output
  drum_roll  polyphonic percussion, raw multi-hot roll
  melody     monophonic, per-step categorical labels

Examples:
  noteroll encode beat.mid -k drum_roll -o beat.json
  noteroll decode beat.json -k drum_roll -o beat.mid
  noteroll roll beat.mid -k drums
  noteroll tui beat.mid
  noteroll serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var encodeCmd = &cobra.Command{
	Use:   "encode <input.mid|input.json>",
	Short: "Encode a sequence into a tensor JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <tensor.json>",
	Short: "Decode a tensor JSON file into a sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

var rollCmd = &cobra.Command{
	Use:   "roll <input.mid|input.json>",
	Short: "Print the encoded tensor as a text grid",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoll,
}

var tuiCmd = &cobra.Command{
	Use:   "tui <input.mid>",
	Short: "View an encoded tensor in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&kindName, "kind", "k", "drum_roll", "Converter kind (drums, drum_roll, melody)")
	rootCmd.PersistentFlags().IntVarP(&stepCount, "steps", "s", 0, "Timeline length in steps (0 = derive from input)")
	rootCmd.PersistentFlags().IntVar(&segmentCount, "segments", 0, "Segmentation hint passed through to the converter")
	rootCmd.PersistentFlags().IntVar(&splitCount, "splits", 0, "Split hint passed through to the converter")
	rootCmd.PersistentFlags().IntVar(&minPitch, "min-pitch", 48, "Melody: lowest encodable pitch (inclusive)")
	rootCmd.PersistentFlags().IntVar(&maxPitch, "max-pitch", 84, "Melody: highest encodable pitch (inclusive)")
	rootCmd.PersistentFlags().IntVar(&stepsPerQuarter, "steps-per-quarter", sequence.DefaultStepsPerQuarter, "Quantization grid for MIDI input/output")

	encodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output tensor JSON path")
	decodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output path (.mid or .json)")
	decodeCmd.Flags().Float64Var(&tempo, "tempo", 120, "Tempo for MIDI output")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func buildSpec(steps int) converter.Spec {
	cfg := converter.Config{
		StepCount:    steps,
		SegmentCount: segmentCount,
		SplitCount:   splitCount,
	}
	kind := converter.Kind(kindName)
	if kind == converter.KindMelody {
		lo, hi := minPitch, maxPitch
		cfg.MinPitch = &lo
		cfg.MaxPitch = &hi
	}
	return converter.Spec{Kind: kind, Args: cfg}
}

// readSequence loads a MIDI or JSON note sequence.
func readSequence(path string) (*sequence.NoteSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return sequence.FromSMF(data, stepsPerQuarter)
	default:
		var seq sequence.NoteSequence
		if err := json.Unmarshal(data, &seq); err != nil {
			return nil, fmt.Errorf("failed to parse sequence JSON: %w", err)
		}
		return &seq, nil
	}
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func encodeInput(path string) (*converter.Spec, [][]float64, error) {
	seq, err := readSequence(path)
	if err != nil {
		return nil, nil, err
	}
	steps := stepCount
	if steps == 0 {
		steps = seq.TotalSteps
	}
	spec := buildSpec(steps)
	conv, err := converter.New(spec)
	if err != nil {
		return nil, nil, err
	}
	enc, err := conv.Encode(seq)
	if err != nil {
		return nil, nil, err
	}
	return &spec, enc.Rows(), nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	_, rows, err := encodeInput(input)
	if err != nil {
		return err
	}

	tf := tensorFile{Shape: []int{len(rows), len(rows[0])}, Tensor: rows}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	fmt.Printf("Encoded %s -> %s (%dx%d)\n", input, output, tf.Shape[0], tf.Shape[1])
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	var tf tensorFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("failed to parse tensor JSON: %w", err)
	}

	steps := stepCount
	if steps == 0 {
		steps = len(tf.Tensor)
	}
	conv, err := converter.New(buildSpec(steps))
	if err != nil {
		return err
	}

	t, err := tensor.FromRows(tf.Tensor)
	if err != nil {
		return err
	}
	defer t.Free()

	seq, err := conv.Decode(context.Background(), t)
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(filepath.Ext(output)) {
	case ".mid", ".midi":
		out, err = sequence.ToSMF(seq, stepsPerQuarter, tempo)
	default:
		out, err = json.MarshalIndent(seq, "", "  ")
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, out, 0644); err != nil {
		return err
	}

	fmt.Printf("Decoded %s -> %s (%d notes)\n", input, output, len(seq.Notes))
	return nil
}

func runRoll(cmd *cobra.Command, args []string) error {
	_, rows, err := encodeInput(args[0])
	if err != nil {
		return err
	}
	for step, row := range rows {
		fmt.Printf("%4d ", step)
		for _, v := range row {
			if v > 0.5 {
				fmt.Print("█")
			} else {
				fmt.Print("·")
			}
		}
		fmt.Println()
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(args[0], buildSpec(stepCount))
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
