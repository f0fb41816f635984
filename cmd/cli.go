// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spectra/internal/build"
	"spectra/internal/config"
	"spectra/internal/fft"
)

// Args holds the parsed command line configuration plus the one-off
// command to run, if any.
type Args struct {
	Config  *config.Config
	Command string
}

// ParseArgs parses command line flags into a config.Config, layered on
// top of built-in defaults (or a config file loaded via --config).
func ParseArgs() (*Args, error) {
	buildInfo := build.GetBuildFlags()

	var configPath string
	var windowName string
	args := &Args{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio spectrum analyzer",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			args.Config = cfg

			if windowName != "" {
				w, err := fft.ParseWindow(windowName)
				if err != nil {
					return fmt.Errorf("unknown FFT window %q", windowName)
				}
				cfg.FFT.Window = w
				cfg.FFT.WindowName = w.String()
			}
			return cfg.Validate()
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file. Defaults to ./config.yaml if present.")

	// Audio capture flags.
	rootCmd.PersistentFlags().IntP("device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' to see available devices.")
	rootCmd.PersistentFlags().Uint32P("sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hz")
	rootCmd.PersistentFlags().Uint32P("frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Frames per capture buffer (affects latency)")
	rootCmd.PersistentFlags().BoolP("low-latency", "l", config.DefaultLowLatency,
		"Request low latency mode from the audio backend")

	// FFT flags.
	rootCmd.PersistentFlags().Int("fft-size", config.DefaultFFTSize,
		"FFT transform size, must be a power of two")
	rootCmd.PersistentFlags().StringVar(&windowName, "window", "",
		"FFT window function: Rectangular, Hann, Hamming, Blackman, FlatTop")

	// Analyzer flags.
	rootCmd.PersistentFlags().Int("num-bands", config.DefaultNumBands,
		"Number of displayed frequency bands")
	rootCmd.PersistentFlags().Float64("min-frequency", config.DefaultMinFrequency,
		"Lowest frequency mapped to a band, in Hz")
	rootCmd.PersistentFlags().Float64("max-frequency", config.DefaultMaxFrequency,
		"Highest frequency mapped to a band, in Hz")
	rootCmd.PersistentFlags().Float64("smoothing", config.DefaultSmoothing,
		"Exponential smoothing factor in [0, 1)")
	rootCmd.PersistentFlags().Float64("peak-decay", config.DefaultPeakDecayRate,
		"Per-update peak-hold decay factor in [0, 1]")
	rootCmd.PersistentFlags().Bool("linear", !config.DefaultLogarithmic,
		"Use linear (instead of logarithmic) frequency-to-band mapping")

	// Transport flags.
	rootCmd.PersistentFlags().String("sink", "",
		"Output sink: tui, log, websocket, or udp")
	rootCmd.PersistentFlags().String("udp-target", "",
		"UDP target address for the udp sink (host:port)")
	rootCmd.PersistentFlags().String("websocket-address", "",
		"Listen address for the websocket sink")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return bindFlags(cmd, args.Config)
	}
	listCmd.RunE = func(cmd *cobra.Command, flagsArgs []string) error {
		if err := bindFlags(cmd, args.Config); err != nil {
			return err
		}
		args.Command = "list"
		return nil
	}

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return args, nil
}

// bindFlags copies any explicitly-set flags onto cfg, overriding values
// loaded from the config file or built-in defaults.
func bindFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("device") {
		v, _ := flags.GetInt("device")
		cfg.Audio.DeviceID = v
	}
	if flags.Changed("sample-rate") {
		v, _ := flags.GetUint32("sample-rate")
		cfg.Audio.SampleRate = v
	}
	if flags.Changed("frames-per-buffer") {
		v, _ := flags.GetUint32("frames-per-buffer")
		cfg.Audio.BufferFrames = v
	}
	if flags.Changed("low-latency") {
		v, _ := flags.GetBool("low-latency")
		cfg.Audio.LowLatency = v
	}
	if flags.Changed("fft-size") {
		v, _ := flags.GetInt("fft-size")
		cfg.FFT.FFTSize = v
	}
	if flags.Changed("num-bands") {
		v, _ := flags.GetInt("num-bands")
		cfg.Analyzer.NumBands = v
	}
	if flags.Changed("min-frequency") {
		v, _ := flags.GetFloat64("min-frequency")
		cfg.Analyzer.MinFrequency = v
	}
	if flags.Changed("max-frequency") {
		v, _ := flags.GetFloat64("max-frequency")
		cfg.Analyzer.MaxFrequency = v
	}
	if flags.Changed("smoothing") {
		v, _ := flags.GetFloat64("smoothing")
		cfg.Analyzer.SmoothingFactor = v
	}
	if flags.Changed("peak-decay") {
		v, _ := flags.GetFloat64("peak-decay")
		cfg.Analyzer.PeakDecayRate = v
	}
	if flags.Changed("linear") {
		v, _ := flags.GetBool("linear")
		cfg.Analyzer.LogarithmicFrequency = !v
	}
	if flags.Changed("sink") {
		v, _ := flags.GetString("sink")
		cfg.Transport.Sink = v
	}
	if flags.Changed("udp-target") {
		v, _ := flags.GetString("udp-target")
		cfg.Transport.UDPTargetAddress = v
	}
	if flags.Changed("websocket-address") {
		v, _ := flags.GetString("websocket-address")
		cfg.Transport.WebSocketAddress = v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		cfg.Debug = v
		if v {
			cfg.LogLevel = "debug"
		}
	}

	return cfg.Validate()
}
