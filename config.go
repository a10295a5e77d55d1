/*
 * SPDX-License-Identifier: Unlicense
 *
 * This is free and unencumbered software released into the public domain.
 *
 * Anyone is free to copy, modify, publish, use, compile, sell, or distribute this
 * software, either in source code form or as a compiled binary, for any purpose,
 * commercial or non-commercial, and by any means.
 *
 * For more information, please refer to <http://unlicense.org/>
 */

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PreprocessOptions controls the image preparation done before detection.
type PreprocessOptions struct {
	MaxSize         int     `yaml:"max_size"` // 0 disables resizing
	EnhanceContrast bool    `yaml:"enhance_contrast"`
	Alpha           float64 `yaml:"alpha"`
	Beta            float64 `yaml:"beta"`
}

// Config holds every setting of the tool.
type Config struct {
	ModelPath    string            `yaml:"model"`
	LabelPath    string            `yaml:"label"` // empty selects the PP-DocLayout-L labels
	Format       string            `yaml:"format"`
	Threshold    float64           `yaml:"threshold"`
	NMS          float64           `yaml:"nms"` // 0 disables NMS
	Threads      int               `yaml:"threads"`
	EdgeTPU      bool              `yaml:"edgetpu"`
	Preprocess   PreprocessOptions `yaml:"preprocess"`
	NestedFilter bool              `yaml:"nested_filter"`
	OutputDir    string            `yaml:"output"`
	SaveCrops    bool              `yaml:"crops"`
	Serve        string            `yaml:"serve"`
	StaticDir    string            `yaml:"static"`
	Verbose      bool              `yaml:"verbose"`
}

// DefaultConfig returns the settings used when neither a config file nor
// flags say otherwise.
func DefaultConfig() Config {
	return Config{
		ModelPath: "models/pp-doclayout-l.tflite",
		Format:    formatDetr,
		Threshold: 0.5,
		Threads:   4,
		Preprocess: PreprocessOptions{
			MaxSize:         1920,
			EnhanceContrast: true,
			Alpha:           1.2,
			Beta:            10,
		},
		NestedFilter: true,
		OutputDir:    "./output/",
		StaticDir:    "./static",
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that cannot be fixed up silently.
func (c Config) Validate() error {
	switch c.Format {
	case formatDetr, formatYolo, formatSsd:
	default:
		return fmt.Errorf("unknown model format %q", c.Format)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %v", c.Threshold)
	}
	if c.NMS < 0 || c.NMS > 1 {
		return fmt.Errorf("nms must be in [0, 1], got %v", c.NMS)
	}
	if c.Preprocess.MaxSize < 0 {
		return fmt.Errorf("max-size must not be negative, got %d", c.Preprocess.MaxSize)
	}
	if c.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	return nil
}

// parseArgs builds the configuration from defaults, an optional YAML file and
// the flags explicitly given on the command line, in that order of precedence.
// It returns the remaining positional arguments.
func parseArgs(args []string, output io.Writer) (Config, []string, error) {
	fs := flag.NewFlagSet("layout-tflite", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: layout-tflite [options] <image_path>\n")
		fs.PrintDefaults()
	}

	def := DefaultConfig()
	f := def
	noNested := false
	configPath := fs.String("config", "", "path to a YAML config file")
	fs.StringVar(&f.ModelPath, "model", def.ModelPath, "path to model file (.tflite or .onnx)")
	fs.StringVar(&f.LabelPath, "label", def.LabelPath, "path to label file (default: PP-DocLayout-L labels)")
	fs.StringVar(&f.Format, "format", def.Format, "model output format: detr, yolo or ssd")
	fs.Float64Var(&f.Threshold, "threshold", def.Threshold, "layout score threshold")
	fs.Float64Var(&f.NMS, "nms", def.NMS, "NMS IoU threshold (0 disables)")
	fs.IntVar(&f.Threads, "threads", def.Threads, "interpreter threads")
	fs.BoolVar(&f.EdgeTPU, "edgetpu", def.EdgeTPU, "use the first EdgeTPU device when available")
	fs.IntVar(&f.Preprocess.MaxSize, "max-size", def.Preprocess.MaxSize, "resize images whose largest side exceeds this (0 disables)")
	fs.BoolVar(&f.Preprocess.EnhanceContrast, "contrast", def.Preprocess.EnhanceContrast, "enhance contrast before detection")
	fs.Float64Var(&f.Preprocess.Alpha, "alpha", def.Preprocess.Alpha, "contrast gain")
	fs.Float64Var(&f.Preprocess.Beta, "beta", def.Preprocess.Beta, "contrast bias")
	fs.BoolVar(&noNested, "no-nested-filter", false, "keep picture boxes nested inside other picture boxes")
	fs.StringVar(&f.OutputDir, "output", def.OutputDir, "output directory")
	fs.BoolVar(&f.SaveCrops, "crops", def.SaveCrops, "also save every region as a separate image")
	fs.StringVar(&f.Serve, "serve", def.Serve, "serve HTTP on this address instead of processing an image")
	fs.StringVar(&f.StaticDir, "static", def.StaticDir, "static files served in HTTP mode")
	fs.BoolVar(&f.Verbose, "verbose", def.Verbose, "debug logging")

	if err := fs.Parse(args); err != nil {
		return def, nil, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return cfg, nil, err
		}
	}

	apply := map[string]func(){
		"model":            func() { cfg.ModelPath = f.ModelPath },
		"label":            func() { cfg.LabelPath = f.LabelPath },
		"format":           func() { cfg.Format = f.Format },
		"threshold":        func() { cfg.Threshold = f.Threshold },
		"nms":              func() { cfg.NMS = f.NMS },
		"threads":          func() { cfg.Threads = f.Threads },
		"edgetpu":          func() { cfg.EdgeTPU = f.EdgeTPU },
		"max-size":         func() { cfg.Preprocess.MaxSize = f.Preprocess.MaxSize },
		"contrast":         func() { cfg.Preprocess.EnhanceContrast = f.Preprocess.EnhanceContrast },
		"alpha":            func() { cfg.Preprocess.Alpha = f.Preprocess.Alpha },
		"beta":             func() { cfg.Preprocess.Beta = f.Preprocess.Beta },
		"no-nested-filter": func() { cfg.NestedFilter = !noNested },
		"output":           func() { cfg.OutputDir = f.OutputDir },
		"crops":            func() { cfg.SaveCrops = f.SaveCrops },
		"serve":            func() { cfg.Serve = f.Serve },
		"static":           func() { cfg.StaticDir = f.StaticDir },
		"verbose":          func() { cfg.Verbose = f.Verbose },
	}
	fs.Visit(func(fl *flag.Flag) {
		if fn, ok := apply[fl.Name]; ok {
			fn()
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}
