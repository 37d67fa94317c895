package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/LdDl/sort-go/mot"
	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/pkg/errors"
)

type options struct {
	input      string
	output     string
	configFile string
	maxAge     int
	minHits    int
	iou        float64
	minScore   float64
	summary    bool
	verbose    bool
}

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func main() {
	parser := argparse.NewParser("sort-replay", "Replay per-frame detections through the SORT tracker")
	input := parser.String("i", "input", &argparse.Options{Help: "Detections file (JSON)", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Output CSV file. Standard output if empty", Required: false, Default: ""})
	configFile := parser.String("c", "config", &argparse.Options{Help: "Tracker config file (JSON)", Required: false, Default: ""})
	maxAge := parser.Int("", "max-age", &argparse.Options{Help: "Override max_age", Required: false, Default: 0})
	minHits := parser.Int("", "min-hits", &argparse.Options{Help: "Override min_hits", Required: false, Default: 0})
	iou := parser.Float("", "iou", &argparse.Options{Help: "Override iou_threshold", Required: false, Default: -1.0})
	minScore := parser.Float("", "min-score", &argparse.Options{Help: "Drop detections scored below this", Required: false, Default: 0.0})
	summary := parser.Flag("s", "summary", &argparse.Options{Help: "Log track length statistics at the end", Default: false})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Log track spawns and removals", Default: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)
	defer logger.Close()

	opts := options{
		input:      *input,
		output:     *output,
		configFile: *configFile,
		maxAge:     *maxAge,
		minHits:    *minHits,
		iou:        *iou,
		minScore:   *minScore,
		summary:    *summary,
		verbose:    *verbose,
	}
	check(run(logger, opts))
}

// buildConfig merges defaults, the config file and command line overrides.
func buildConfig(opts options) (mot.Config, error) {
	cfg := mot.DefaultConfig()
	if opts.configFile != "" {
		var err error
		cfg, err = mot.LoadConfig(opts.configFile)
		if err != nil {
			return mot.Config{}, err
		}
	}
	if opts.maxAge > 0 {
		cfg.MaxAge = opts.maxAge
	}
	if opts.minHits > 0 {
		cfg.MinHits = opts.minHits
	}
	if opts.iou >= 0 {
		cfg.IoUThreshold = opts.iou
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.Validate()
}

func run(logger logs.Log, opts options) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	labels, err := loadVideoLabels(opts.input)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return errors.Wrap(err, "can't create output file")
		}
		defer file.Close()
		out = file
	}

	tracker, err := mot.NewSortTracker(logger, cfg)
	if err != nil {
		return err
	}
	logger.Infof("Replaying %v frames from %v (session %v, max_age=%v, min_hits=%v, iou=%v, model=%v)",
		len(labels.Frames), opts.input, tracker.SessionID(), cfg.MaxAge, cfg.MinHits, cfg.IoUThreshold, cfg.MotionModel)

	stats, err := replay(tracker, labels, opts.minScore, out)
	if err != nil {
		return err
	}
	if opts.summary {
		logSummary(logger, stats)
	}
	return nil
}

// replay feeds every frame to the tracker and writes reported tracks as CSV.
// Format: frame;id;class;score;x;y;width;height
func replay(tracker *mot.SortTracker, labels *VideoLabels, minScore float64, out io.Writer) (*trackStats, error) {
	writer := csv.NewWriter(out)
	writer.Comma = ';'
	err := writer.Write([]string{"frame", "id", "class", "score", "x", "y", "width", "height"})
	if err != nil {
		return nil, err
	}

	stats := newTrackStats()
	problems := 0
	for i, frame := range labels.Frames {
		if frame == nil {
			frame = &ImageLabels{}
		}
		frameNumber := frame.Frame
		if frameNumber == 0 {
			frameNumber = i
		}
		objects, err := tracker.Update(frame.detections(labels.Classes, minScore))
		if err != nil {
			// Already logged by the tracker, frame output is still complete
			var frameErrs mot.FrameErrors
			if errors.As(err, &frameErrs) {
				problems += len(frameErrs)
			}
		}
		for _, obj := range objects {
			stats.observe(obj.ID)
			err = writer.Write([]string{
				strconv.Itoa(frameNumber),
				strconv.Itoa(obj.ID),
				obj.ClassLabel,
				strconv.FormatFloat(obj.Score, 'f', 4, 64),
				strconv.FormatFloat(obj.Box.X, 'f', 2, 64),
				strconv.FormatFloat(obj.Box.Y, 'f', 2, 64),
				strconv.FormatFloat(obj.Box.Width, 'f', 2, 64),
				strconv.FormatFloat(obj.Box.Height, 'f', 2, 64),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	stats.problems = problems
	writer.Flush()
	return stats, writer.Error()
}
