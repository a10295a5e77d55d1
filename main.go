// layout-tflite detects the layout of a document image with a pretrained
// model and writes an annotated image plus a JSON report.
//
// Usage:
//
//	layout-tflite [options] <image_path>
//	layout-tflite -serve :8080 [options]
//
// The image is resized so that its largest side is at most 1920 pixels and
// its contrast is enhanced before detection. Picture boxes nested inside
// other picture boxes are dropped unless -no-nested-filter is given. Results
// go to ./output/ by default.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, rest, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	log.SetOutput(stderr)
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if cfg.Serve == "" && len(rest) != 1 {
		return fmt.Errorf("expected exactly one image path, got %d arguments", len(rest))
	}

	labels, err := loadLabels(cfg.LabelPath)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}

	detector, err := NewDetector(cfg, labels)
	if err != nil {
		return err
	}
	defer detector.Close()

	pipeline := NewPipeline(detector, cfg)

	if cfg.Serve != "" {
		gin.SetMode(gin.ReleaseMode)
		worker := startModelWorker(pipeline)
		defer worker.Stop()
		return serve(ctx, cfg.Serve, newRouter(worker, cfg.StaticDir))
	}

	return detectFile(ctx, pipeline, rest[0], stdout)
}

func detectFile(ctx context.Context, pipeline *Pipeline, path string, stdout io.Writer) error {
	result, img, err := pipeline.Run(ctx, path)
	defer img.Close()
	if err != nil {
		return err
	}

	if err := result.Print(stdout); err != nil {
		return err
	}
	if err := pipeline.Save(result, img); err != nil {
		return err
	}
	result.PrintSummary(stdout)
	return nil
}
