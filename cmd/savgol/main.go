// Command savgol smooths grayscale images with a 2D Savitzky-Golay filter.
package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"savgol-image-filter/internal/algorithms"
	"savgol-image-filter/internal/config"
	"savgol-image-filter/internal/core"
	"savgol-image-filter/internal/gui"
	imageio "savgol-image-filter/internal/io"
	"savgol-image-filter/internal/metrics"
)

const (
	AppName    = "Savitzky-Golay Image Filter"
	AppID      = "io.savgol.image-filter"
	AppVersion = "1.0.0"
)

type cliFlags struct {
	configPath string
	input      string
	output     string
	width      int
	height     int
	order      int
	workers    int
	debug      bool
	preview    bool
	metrics    bool
	baseline   string
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flags := registerFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := buildConfig(fs, flags)
	logger := initLogger(cfg.Debug)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logger.WithFields(logrus.Fields{
		"version": AppVersion,
		"window":  cfg.SavGolWindow().String(),
		"workers": cfg.Workers,
	}).Info("Starting " + AppName)

	if cfg.Preview {
		err = runPreview(cfg, logger)
	} else {
		err = runBatch(cfg, logger)
	}
	if err != nil {
		logger.WithError(err).Fatal("Smoothing failed")
	}
	logger.Info("Application shutting down gracefully")
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	defaults := config.Default()
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.input, "in", "", "Input image")
	fs.StringVar(&f.output, "out", "", "Output image")
	fs.IntVar(&f.width, "width", defaults.Window.Width, "Window width in pixels")
	fs.IntVar(&f.height, "height", defaults.Window.Height, "Window height in pixels")
	fs.IntVar(&f.order, "order", defaults.Order, "Polynomial order")
	fs.IntVar(&f.workers, "workers", defaults.Workers, "Regions processed concurrently")
	fs.BoolVar(&f.debug, "debug", defaults.Debug, "Enable debug mode with verbose logging")
	fs.BoolVar(&f.preview, "preview", defaults.Preview, "Open the interactive preview window")
	fs.BoolVar(&f.metrics, "metrics", defaults.Metrics, "Log quality metrics of the result")
	fs.StringVar(&f.baseline, "baseline", defaults.Baseline, "Compare against gaussian_blur or median_blur")
	return f
}

// buildConfig loads the config file if one was given and then applies the
// flags that were set explicitly on the command line
func buildConfig(fs *flag.FlagSet, f *cliFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "in":
			cfg.Input = f.input
		case "out":
			cfg.Output = f.output
		case "width":
			cfg.Window.Width = f.width
		case "height":
			cfg.Window.Height = f.height
		case "order":
			cfg.Order = f.order
		case "workers":
			cfg.Workers = f.workers
		case "debug":
			cfg.Debug = f.debug
		case "preview":
			cfg.Preview = f.preview
		case "metrics":
			cfg.Metrics = f.metrics
		case "baseline":
			cfg.Baseline = f.baseline
		}
	})

	return cfg, cfg.Validate()
}

func runBatch(cfg config.Config, logger logrus.FieldLogger) error {
	loader := imageio.NewImageLoader(logger)

	input, err := loader.LoadImage(cfg.Input)
	if err != nil {
		return err
	}
	defer input.Close()

	w := cfg.SavGolWindow()
	output, err := algorithms.Apply("savitzky_golay", input, map[string]interface{}{
		"window_width":  w.Width,
		"window_height": w.Height,
		"order":         w.Order,
		"workers":       cfg.Workers,
	})
	if err != nil {
		return err
	}
	defer output.Close()

	if err := loader.SaveImage(output, cfg.Output); err != nil {
		return err
	}

	if !cfg.Metrics {
		return nil
	}
	if err := logReport("savitzky_golay", input, output, logger); err != nil {
		return err
	}
	if cfg.Baseline != "" {
		runBaseline(cfg, input, logger)
	}
	return nil
}

// runBaseline smooths input with a reference filter of comparable size and
// logs its metrics; failures only produce a warning
func runBaseline(cfg config.Config, input gocv.Mat, logger logrus.FieldLogger) {
	size := max(cfg.Window.Width, cfg.Window.Height)
	baseline, err := algorithms.Apply(cfg.Baseline, input, map[string]interface{}{"kernel_size": size})
	if err != nil {
		logger.WithError(err).WithField("baseline", cfg.Baseline).Warn("Baseline skipped")
		return
	}
	defer baseline.Close()

	if err := logReport(cfg.Baseline, input, baseline, logger); err != nil {
		logger.WithError(err).Warn("Baseline metrics failed")
	}
}

func logReport(algorithm string, input, output gocv.Mat, logger logrus.FieldLogger) error {
	original, err := algorithms.ToGrayImage(input)
	if err != nil {
		return err
	}
	processed, err := algorithms.ToGrayImage(output)
	if err != nil {
		return err
	}

	report := metrics.NewEvaluator().GenerateReport(original, processed)
	fields := logrus.Fields{"algorithm": algorithm, "level": report.Level}
	for name, value := range report.Metrics {
		fields[name] = value
	}
	logger.WithFields(fields).Info("Quality metrics")
	return nil
}

func runPreview(cfg config.Config, logger *logrus.Logger) error {
	loader := imageio.NewImageLoader(logger)
	gray, err := loader.LoadGray(cfg.Input)
	if err != nil {
		return err
	}

	data := core.NewImageData()
	if err := data.SetOriginal(gray, cfg.Input); err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	pipeline := core.NewPipeline(data, logger)
	pipeline.SetWorkers(cfg.Workers)
	if err := pipeline.SetWindow(cfg.SavGolWindow()); err != nil {
		return err
	}

	previewApp := app.NewWithID(AppID)
	previewApp.SetIcon(theme.DocumentIcon())
	gui.NewApplication(previewApp, data, pipeline, logger).ShowAndRun()

	if cfg.Output != "" {
		if processed := data.GetProcessed(); processed != nil {
			return loader.SaveGray(processed, cfg.Output)
		}
	}
	return nil
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
