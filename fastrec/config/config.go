package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Task names the dataset variant being built
type Task string

const (
	TaskClassifier Task = "classifier"
	TaskSimilarity Task = "similarity"
	TaskTagging    Task = "tagging"
)

// ParseTask maps a subcommand name to a Task
func ParseTask(name string) (Task, error) {
	switch Task(strings.ToLower(strings.TrimSpace(name))) {
	case TaskClassifier:
		return TaskClassifier, nil
	case TaskSimilarity:
		return TaskSimilarity, nil
	case TaskTagging:
		return TaskTagging, nil
	default:
		return "", fmt.Errorf("unknown task %q: %w", name, common.ErrInvalidConfig)
	}
}

// Config stores all configuration of a dataset build.
// The values are read by viper from a config file, environment variables or bound flags.
type Config struct {
	Task           Task             `mapstructure:"-"`
	Input          string           `mapstructure:"input"`
	Output         string           `mapstructure:"output"`
	Format         string           `mapstructure:"format"`
	Workers        int              `mapstructure:"workers"`
	LogLevel       string           `mapstructure:"log_level"`
	SequenceLength int              `mapstructure:"sequence_length"`
	Lang           string           `mapstructure:"lang"`
	WithLangEn     bool             `mapstructure:"with_lang_en"`
	Normalize      string           `mapstructure:"normalize"`
	Vocab          VocabConfig      `mapstructure:"vocab"`
	Classifier     ClassifierConfig `mapstructure:"classifier"`
	Similarity     SimilarityConfig `mapstructure:"similarity"`
	Tagging        TaggingConfig    `mapstructure:"tagging"`
}

// VocabConfig stores vocabulary construction settings.
type VocabConfig struct {
	// MaxSize is accepted and reported but never enforced
	MaxSize   int    `mapstructure:"max_size"`
	Stopwords string `mapstructure:"stopwords"`
	WithVocab bool   `mapstructure:"with_vocab"`
	Padding   string `mapstructure:"padding"`
	Unknown   string `mapstructure:"unknown"`
}

// ClassifierConfig stores single-text classification settings.
type ClassifierConfig struct {
	Separator   string `mapstructure:"separator"`
	WithLabelID bool   `mapstructure:"with_label_id"`
}

// SimilarityConfig stores text-pair similarity settings.
type SimilarityConfig struct {
	SentSep  string `mapstructure:"sent_sep"`
	LabelSep string `mapstructure:"label_sep"`
	WithBool bool   `mapstructure:"with_bool"`
}

// TaggingConfig stores sequence tagging settings.
type TaggingConfig struct {
	Separator string `mapstructure:"separator"`
	PadTag    string `mapstructure:"pad_tag"`
}

// TokenizerLang returns the effective tokenization mode
func (c *Config) TokenizerLang() string {
	if c.WithLangEn {
		return "word"
	}
	return c.Lang
}

// LoadConfig reads configuration for task from a config file, environment variables
// and any flags registered on flags with RegisterFlags. flags may be nil.
func LoadConfig(configPath string, task Task, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.SetConfigName(internal.DefaultConfigName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // vocab.max_size becomes FASTRECORD_VOCAB_MAX_SIZE
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, task, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.Task = task

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("format", internal.DefaultFormat)
	v.SetDefault("workers", 0)
	v.SetDefault("log_level", internal.DefaultLogLevel)
	v.SetDefault("sequence_length", internal.DefaultSequenceLength)
	v.SetDefault("lang", internal.DefaultLang)
	v.SetDefault("with_lang_en", false)
	v.SetDefault("normalize", internal.DefaultNormalize)

	v.SetDefault("vocab.max_size", internal.DefaultMaxVocabSize)
	v.SetDefault("vocab.stopwords", "")
	v.SetDefault("vocab.with_vocab", false)
	v.SetDefault("vocab.padding", internal.DefaultPaddingToken)
	v.SetDefault("vocab.unknown", internal.DefaultUnknownToken)

	v.SetDefault("classifier.separator", internal.DefaultSeparator)
	v.SetDefault("classifier.with_label_id", false)

	v.SetDefault("similarity.sent_sep", internal.DefaultSeparator)
	v.SetDefault("similarity.label_sep", internal.DefaultSeparator)
	v.SetDefault("similarity.with_bool", false)

	v.SetDefault("tagging.separator", internal.DefaultSeparator)
	v.SetDefault("tagging.pad_tag", internal.DefaultPaddingTag)
}

// Validate checks option values and fills derived defaults (output dir, worker count).
func (c *Config) Validate() error {
	if err := common.RequireNonEmpty(c.Input, "input"); err != nil {
		return err
	}
	if c.Output == "" {
		c.Output = c.Input
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.SequenceLength <= 0 {
		return fmt.Errorf("sequence_length must be positive, got %d: %w", c.SequenceLength, common.ErrInvalidConfig)
	}

	if err := oneOf("format", c.Format, "ipc", "parquet"); err != nil {
		return err
	}
	if err := oneOf("lang", c.Lang, "word", "char"); err != nil {
		return err
	}
	if err := oneOf("normalize", c.Normalize, "none", "nfc", "nfkc"); err != nil {
		return err
	}

	if err := common.RequireNonEmpty(c.Vocab.Padding, "vocab.padding"); err != nil {
		return err
	}
	if err := common.RequireNonEmpty(c.Vocab.Unknown, "vocab.unknown"); err != nil {
		return err
	}
	if c.Vocab.Padding == c.Vocab.Unknown {
		return fmt.Errorf("padding and unknown tokens must differ: %w", common.ErrInvalidConfig)
	}

	switch c.Task {
	case TaskClassifier:
		return common.RequireNonEmpty(c.Classifier.Separator, "classifier.separator")
	case TaskSimilarity:
		if err := common.RequireNonEmpty(c.Similarity.SentSep, "similarity.sent_sep"); err != nil {
			return err
		}
		return common.RequireNonEmpty(c.Similarity.LabelSep, "similarity.label_sep")
	case TaskTagging:
		if err := common.RequireNonEmpty(c.Tagging.Separator, "tagging.separator"); err != nil {
			return err
		}
		return common.RequireNonEmpty(c.Tagging.PadTag, "tagging.pad_tag")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q: %w", field, allowed, value, common.ErrInvalidConfig)
}
