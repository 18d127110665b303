package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"

	"pageflow/layout"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	MeasurementConfig struct {
		Mode             MeasureMode `yaml:"mode" validate:"gte=0"`
		LineHeight       float64     `yaml:"line_height" validate:"gt=0"`
		CharsPerLine     int         `yaml:"chars_per_line" validate:"min=1"`
		ParagraphSpacing float64     `yaml:"paragraph_spacing" validate:"gte=0"`
	}

	LayoutConfig struct {
		PageContentCapacity       float64           `yaml:"page_content_capacity" validate:"gt=0"`
		HeaderHeight              float64           `yaml:"header_height" validate:"gte=0"`
		FooterHeight              float64           `yaml:"footer_height" validate:"gte=0"`
		MinimumTextLengthForSplit int               `yaml:"minimum_text_length_for_split" validate:"gte=0"`
		MaxReflowPasses           int               `yaml:"max_reflow_passes" validate:"min=1,max=1000"`
		Measurement               MeasurementConfig `yaml:"measurement"`
	}

	PageNumbersConfig struct {
		Placement PageNumberPlacement `yaml:"placement" validate:"gte=0"`
	}

	EngineConfig struct {
		Debounce    time.Duration     `yaml:"debounce" validate:"gte=0"`
		Underflow   UnderflowMode     `yaml:"underflow" validate:"gte=0"`
		PageNumbers PageNumbersConfig `yaml:"page_numbers"`
	}

	OutputConfig struct {
		// FileNameTransliterate turns output file names into ASCII slugs.
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
		FileNameSuffix        string `yaml:"file_name_suffix" validate:"excludesall=/\\"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Layout    LayoutConfig   `yaml:"layout"`
		Engine    EngineConfig   `yaml:"engine"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Geometry returns page geometry described by layout configuration.
func (conf *LayoutConfig) Geometry() layout.Geometry {
	return layout.Geometry{
		ContentCapacity: conf.PageContentCapacity,
		HeaderHeight:    conf.HeaderHeight,
		FooterHeight:    conf.FooterHeight,
	}
}

// Estimator returns text based measurer described by configuration.
func (conf *MeasurementConfig) Estimator() layout.Estimator {
	return layout.Estimator{
		LineHeight:       conf.LineHeight,
		CharsPerLine:     conf.CharsPerLine,
		ParagraphSpacing: conf.ParagraphSpacing,
	}
}

// checkConfig performs cross field checks validator tags cannot express.
func checkConfig(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	// estimated line must fit on a page or reflow would keep creating pages
	m := cfg.Layout.Measurement
	if m.Mode == MeasureModeEstimate && m.LineHeight+m.ParagraphSpacing > cfg.Layout.PageContentCapacity {
		sl.ReportError(m.LineHeight, "LineHeight", "line_height", "fits_page", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Default returns processed default configuration. It panics when embedded
// template is broken which is programming error.
func Default() *Config {
	cfg, err := LoadConfiguration("")
	if err != nil {
		panic(fmt.Sprintf("embedded configuration is invalid: %v", err))
	}
	return cfg
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
