package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	_ "golang.org/x/image/webp"

	"github.com/twpayne/go-regrid"
)

var (
	configFile      = flag.String("config", "", "config `file`")
	metricsTextfile = flag.String("metrics-textfile", "", "write metrics to `file`")
)

// A usageError is an error in the command line arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func run(ctx context.Context, config *Config, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return newUsageError("syntax: regrid [flags] resize|sample [flags] args...")
	}
	var err error
	switch command, args := args[0], args[1:]; command {
	case "resize":
		err = runResize(ctx, config, args, stdout, stderr)
	case "sample":
		err = runSample(ctx, config, args, stdout, stderr)
	default:
		err = newUsageError("%s: unknown command", command)
	}
	if err != nil {
		return err
	}

	if config.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(config.Metrics.Textfile, prometheus.DefaultGatherer); err != nil {
			return err
		}
	}
	return nil
}

func runResize(ctx context.Context, config *Config, args []string, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("resize", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	width := flagSet.Int("width", 0, "target width in pixels")
	height := flagSet.Int("height", 0, "target height in pixels")
	algorithm := flagSet.String("algorithm", config.Resize.Algorithm, "interpolation algorithm")
	parallelism := flagSet.Int("parallelism", config.Resize.Parallelism, "rows interpolated concurrently")
	positionalArgs, err := parseInterleaved(flagSet, args)
	if err != nil {
		return &usageError{err: err}
	}

	if len(positionalArgs) != 2 {
		return newUsageError("syntax: regrid resize -width width -height height input output")
	}
	inputPath, outputPath := positionalArgs[0], positionalArgs[1]
	if *width <= 0 || *height <= 0 {
		return newUsageError("width and height must be positive integers")
	}
	if !slices.Contains(regrid.Algorithms(), regrid.Algorithm(*algorithm)) {
		return &usageError{err: &regrid.UnsupportedAlgorithmError{Algorithm: regrid.Algorithm(*algorithm)}}
	}
	if _, err := os.Stat(inputPath); err != nil {
		return &usageError{err: err}
	}
	format, err := imaging.FormatFromFilename(outputPath)
	if err != nil {
		return &usageError{err: fmt.Errorf("%s: %w", outputPath, err)}
	}

	if err := resizeImage(ctx, inputPath, outputPath, format, *width, *height,
		regrid.WithAlgorithm(regrid.Algorithm(*algorithm)),
		regrid.WithResizeParallelism(*parallelism),
	); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved to %s\n", outputPath)
	return nil
}

func resizeImage(ctx context.Context, inputPath, outputPath string, format imaging.Format, width, height int, options ...regrid.ResizeOption) error {
	input, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer input.Close()

	img, err := imaging.Decode(input, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}
	glog.V(1).Infof("resizing %s from %dx%d to %dx%d", inputPath, img.Bounds().Dx(), img.Bounds().Dy(), width, height)

	resized, err := regrid.Resize(ctx, img, width, height, options...)
	if err != nil {
		return err
	}

	return writeImage(outputPath, resized, format)
}

// writeImage writes img to outputPath. outputPath is removed if img cannot be
// written completely.
func writeImage(outputPath string, img image.Image, format imaging.Format) (err error) {
	output, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(outputPath)
		}
	}()
	return imaging.Encode(output, img, format)
}

func runSample(ctx context.Context, config *Config, args []string, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("sample", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	dem := flagSet.String("dem", "", "GeoTIFF `file`")
	srid := flagSet.Int("srid", 0, "SRID of the GeoTIFF, read from the file if zero")
	positionalArgs, err := parseInterleaved(flagSet, args)
	if err != nil {
		return &usageError{err: err}
	}

	if *dem == "" || len(positionalArgs) != 2 {
		return newUsageError("syntax: regrid sample -dem file latitude longitude")
	}
	lat, err := strconv.ParseFloat(positionalArgs[0], 64)
	if err != nil {
		return &usageError{err: err}
	}
	lon, err := strconv.ParseFloat(positionalArgs[1], 64)
	if err != nil {
		return &usageError{err: err}
	}

	fsys := os.DirFS(filepath.Dir(*dem))
	filename := filepath.Base(*dem)
	if *srid == 0 {
		geoTIFF, err := regrid.LoadGeoTIFF(fsys, filename)
		if err != nil {
			return err
		}
		if geoTIFF.SRID == 0 {
			return fmt.Errorf("%s: unknown SRID, set -srid", *dem)
		}
		*srid = geoTIFF.SRID
	}
	glog.V(1).Infof("sampling %s with SRID %d", *dem, *srid)

	tileSet, err := regrid.NewTileSet(
		regrid.WithFS(fsys),
		regrid.WithSRID(*srid),
		regrid.WithCacheSize(config.Tiles.CacheSize),
		regrid.WithTileFilenameFunc(func(regrid.TileCoord) string {
			return filename
		}),
	)
	if err != nil {
		return err
	}
	lonLatSampler, err := regrid.NewLonLatSampler(tileSet)
	if err != nil {
		return err
	}
	defer lonLatSampler.Close()

	samples, err := lonLatSampler.Samples(ctx, [][]float64{{lon, lat}})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, samples[0])
	return nil
}

// parseInterleaved parses args with flagSet, allowing flags to follow
// positional arguments, and returns the positional arguments.
func parseInterleaved(flagSet *flag.FlagSet, args []string) ([]string, error) {
	var positionalArgs []string
	for {
		if err := flagSet.Parse(args); err != nil {
			return nil, err
		}
		if flagSet.NArg() == 0 {
			return positionalArgs, nil
		}
		positionalArgs = append(positionalArgs, flagSet.Arg(0))
		args = flagSet.Args()[1:]
	}
}

func main() {
	flag.Parse()

	err := func() error {
		config, err := loadConfig(*configFile)
		if err != nil {
			return &usageError{err: err}
		}
		if *metricsTextfile != "" {
			config.Metrics.Textfile = *metricsTextfile
		}
		return run(context.Background(), config, flag.Args(), os.Stdout, os.Stderr)
	}()
	glog.Flush()

	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
