package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Zelak312/flowinterp/interp"
	"github.com/Zelak312/flowinterp/opencv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EstimatorNone     = "none"
	EstimatorExternal = "external"
	EstimatorOpenCV   = "opencv"

	SmootherGaussian = "gaussian"
	SmootherImaging  = "imaging"
	SmootherOpenCV   = "opencv"
)

type Config struct {
	BindAddress                string               `yaml:"bindAddress"`
	Port                       int32                `yaml:"port"`
	DatabasePath               string               `yaml:"databasePath"`
	LogPath                    string               `yaml:"logPath"`
	ProcessFolder              string               `yaml:"processFolder"`
	Workers                    int                  `yaml:"workers"`
	DeleteOutputIfAlreadyExist *bool                `yaml:"deleteOutputIfAlreadyExist"`
	FlowEstimator              FlowEstimatorOptions `yaml:"flowEstimator"`
	Interpolation              InterpolationOptions `yaml:"interpolation"`
}

// FlowEstimatorOptions picks what computes the flow of jobs that don't
// come with a .flo file.
type FlowEstimatorOptions struct {
	Kind string `yaml:"kind"`
	// Binary is run as: binary [arguments...] frame0.png frame1.png flow.flo
	Binary    string `yaml:"binary"`
	Arguments string `yaml:"arguments"`
}

type InterpolationOptions struct {
	Smoother           string  `yaml:"smoother"`
	BlurPasses         *int    `yaml:"blurPasses"`
	MatchThreshold     float64 `yaml:"matchThreshold"`
	OcclusionThreshold float64 `yaml:"occlusionThreshold"`
	// Workers is the number of goroutines one interpolation uses.
	Workers int `yaml:"workers"`
}

// Verify config and set defaults
func verifyConfig(config *Config) error {
	if config == nil {
		return errors.New("cannot verify config, config is nil")
	}

	if config.BindAddress == "" {
		config.BindAddress = "127.0.0.1"
	}

	if config.Port == 0 {
		config.Port = 80
	}

	if config.ProcessFolder == "" {
		config.ProcessFolder = "./process"
	}

	if config.LogPath == "" {
		config.LogPath = "./logs"
	}

	if config.Workers == 0 {
		config.Workers = 1
	}

	if config.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", config.Workers)
	}

	if config.DeleteOutputIfAlreadyExist == nil {
		defaultVal := false
		config.DeleteOutputIfAlreadyExist = &defaultVal
	}

	if err := verifyFlowEstimator(&config.FlowEstimator); err != nil {
		return err
	}

	return verifyInterpolation(&config.Interpolation)
}

func verifyFlowEstimator(options *FlowEstimatorOptions) error {
	if options.Kind == "" {
		options.Kind = EstimatorNone
		if options.Binary != "" {
			options.Kind = EstimatorExternal
		}
	}

	switch options.Kind {
	case EstimatorNone:
	case EstimatorExternal:
		if options.Binary == "" {
			return errors.New("missing flow estimator binary in config")
		}
	case EstimatorOpenCV:
		if !opencv.Available {
			return errors.New("opencv flow estimator requested but binary was built without the gocv tag")
		}
	default:
		return fmt.Errorf("unknown flow estimator %q", options.Kind)
	}

	return nil
}

func verifyInterpolation(options *InterpolationOptions) error {
	if options.Smoother == "" {
		options.Smoother = SmootherGaussian
	}

	switch options.Smoother {
	case SmootherGaussian, SmootherImaging:
	case SmootherOpenCV:
		if !opencv.Available {
			return errors.New("opencv smoother requested but binary was built without the gocv tag")
		}
	default:
		return fmt.Errorf("unknown smoother %q", options.Smoother)
	}

	if options.BlurPasses == nil {
		defaultVal := interp.DefaultBlurPasses
		options.BlurPasses = &defaultVal
	}

	if *options.BlurPasses < 0 {
		return fmt.Errorf("blur passes must not be negative, got %d", *options.BlurPasses)
	}

	if options.MatchThreshold == 0 {
		options.MatchThreshold = interp.DefaultMatchThreshold
	}

	if options.MatchThreshold < 0 {
		return fmt.Errorf("match threshold must be positive, got %g", options.MatchThreshold)
	}

	if options.OcclusionThreshold == 0 {
		options.OcclusionThreshold = interp.DefaultOcclusionThreshold
	}

	if options.OcclusionThreshold < 0 || options.OcclusionThreshold > 1 {
		return fmt.Errorf("occlusion threshold must be within (0,1], got %g", options.OcclusionThreshold)
	}

	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}

	return nil
}

// InterpolatorOptions turns the verified interpolation section into
// options for interp.New.
func (c *Config) InterpolatorOptions(logger *logrus.Entry) interp.Options {
	var smoother interp.Smoother
	switch c.Interpolation.Smoother {
	case SmootherImaging:
		smoother = interp.ImagingSmoother{}
	case SmootherOpenCV:
		smoother = opencv.Smoother{}
	default:
		smoother = interp.GaussianSmoother{}
	}

	return interp.Options{
		Thresholds: interp.OcclusionThresholds{
			Match:     c.Interpolation.MatchThreshold,
			Occlusion: c.Interpolation.OcclusionThreshold,
		},
		Smoother:   smoother,
		BlurPasses: *c.Interpolation.BlurPasses,
		Workers:    c.Interpolation.Workers,
		Logger:     logger,
	}
}

// EstimatorArguments splits the configured extra arguments on spaces.
func (o FlowEstimatorOptions) EstimatorArguments() []string {
	return strings.Fields(o.Arguments)
}

func loadConfig(path string, config *Config) error {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return err
		}
	}

	// Override with env variables if they are passed in
	return envconfig.ProcessWithOptions("", config, envconfig.Options{SplitWords: true})
}

func GetConfig(path string) (Config, error) {
	config := Config{}
	if err := loadConfig(path, &config); err != nil {
		return Config{}, err
	}

	if config.DatabasePath == "" {
		return Config{}, errors.New("missing database path in config")
	}

	if err := verifyConfig(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// GetCLIConfig loads the optional config of the interpolate command. The
// database path is not needed and the output is overwritten by default.
func GetCLIConfig(path string) (Config, error) {
	config := Config{}
	if err := loadConfig(path, &config); err != nil {
		return Config{}, err
	}

	if config.DeleteOutputIfAlreadyExist == nil {
		defaultVal := true
		config.DeleteOutputIfAlreadyExist = &defaultVal
	}

	if err := verifyConfig(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}
