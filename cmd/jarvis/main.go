// Package main provides the CLI wrapper for the gesture-sketching engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jarvis-sketch/jarvis/internal/config"
	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/display"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/lighting"
	"github.com/jarvis-sketch/jarvis/pkg/pipeline"
	"github.com/jarvis-sketch/jarvis/pkg/production"
	"github.com/jarvis-sketch/jarvis/pkg/sketchpad"
	"github.com/jarvis-sketch/jarvis/pkg/tracker"
)

var version = "0.1.0"

// canvasSink wires a SketchPad's Update (draw-stage consumer) and Render
// (pixel-buffer producer) together into a single pipeline.Canvas +
// display.Sink pair. It owns the display frame buffer since the sink's
// stride/format is fixed at construction, while the pad itself knows
// nothing about pixels.
type canvasSink struct {
	pad    *sketchpad.SketchPad
	sink   display.Sink
	buf    []byte
	stride int
	w, h   int
}

func newCanvasSink(pad *sketchpad.SketchPad, sink display.Sink, w, h int) *canvasSink {
	stride := w * 4
	return &canvasSink{pad: pad, sink: sink, buf: make([]byte, stride*h), stride: stride, w: w, h: h}
}

func (c *canvasSink) Update(detections []handdetector.HandDetection) {
	c.pad.Update(detections)
	for i := range c.buf {
		c.buf[i] = 0
	}
	if err := c.pad.Render(c.buf, c.stride, c.w, c.h); err != nil {
		return
	}
	_ = c.sink.Render(c.buf, c.stride, c.w, c.h)
}

func main() {
	configPath := flag.String("config", "", "Path to TOML configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	cameraID := flag.Int("camera", -1, "Camera device ID (overrides config)")
	noMirror := flag.Bool("no-mirror", false, "Disable horizontal flip (mirror mode)")
	preview := flag.Bool("preview", false, "Show camera preview window (debug mode)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	sketchName := flag.String("sketch", "sketch", "Name of the sketch file to load/save")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jarvis - gesture-driven sketching engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Run with default settings\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config config.toml      # Run with custom config\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -preview                 # Show a debug preview window\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -sketch table-layout     # Load/save a named sketch\n", os.Args[0])
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("jarvis version %s\n", version)
		os.Exit(0)
	}

	logLevel := zerolog.InfoLevel
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(logLevel).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *cameraID >= 0 {
		cfg.Camera.DeviceID = *cameraID
	}

	log.Debug().
		Int("device", cfg.Camera.DeviceID).
		Int("width", cfg.Camera.Width).
		Int("height", cfg.Camera.Height).
		Int("fps", cfg.Camera.FPS).
		Msg("camera configuration")
	log.Debug().
		Int("detect_width", cfg.Pipeline.DetectWidth).
		Int("detect_height", cfg.Pipeline.DetectHeight).
		Float64("gamma", cfg.Pipeline.Gamma).
		Msg("pipeline configuration")

	mirror := !*noMirror
	cam := camera.NewOpenCVSource(mirror)
	if err := cam.Open(cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS); err != nil {
		log.Fatal().Err(err).Msg("failed to open camera")
	}
	defer cam.Close()

	actualW, actualH := cam.GetActualResolution()
	log.Info().Int("width", actualW).Int("height", actualH).Int("fps", cam.GetActualFPS()).Bool("mirror", mirror).Msg("camera opened")

	detCfg := cfg.Detector.ToHandDetectorConfig()
	base, err := handdetector.New(detCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct hand detector")
	}
	trk := tracker.New(cfg.Tracker.ToTrackerConfig())
	light := lighting.New(cfg.Lighting.ToLightingConfig(), lighting.Baseline{
		ValMin: detCfg.ValMin, SatMin: detCfg.SatMin, SatMax: detCfg.SatMax, HueMax: detCfg.HueMax,
	})
	detector := production.New(cfg.Production.ToProductionConfig(), base, trk, light)

	pad := sketchpad.New(cfg.Sketch.ToSketchpadConfig(), *sketchName, cfg.Pipeline.DetectWidth, cfg.Pipeline.DetectHeight)
	if err := pad.Load(); err != nil {
		log.Warn().Err(err).Str("sketch", *sketchName).Msg("no existing sketch loaded, starting blank")
	}

	var sink display.Sink = noopSink{}
	if *preview {
		win := display.NewWindowSink("jarvis preview")
		defer win.Close()
		sink = win
		log.Info().Msg("preview window enabled")
	}
	canvas := newCanvasSink(pad, sink, cfg.Pipeline.DetectWidth, cfg.Pipeline.DetectHeight)

	pl, err := pipeline.New(cfg.Pipeline.ToPipelineConfig(cfg.Camera), cam, detector, canvas, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct pipeline")
	}

	pl.Start()
	log.Info().Msg("pipeline started, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	pl.Stop()
	if err := pad.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save sketch on shutdown")
	}
}

// noopSink discards rendered frames when no preview window was requested.
type noopSink struct{}

func (noopSink) Render(buf []byte, stride, width, height int) error { return nil }
