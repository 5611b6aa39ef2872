package config

import (
	"fmt"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RegisterFlags defines the command line flags understood by task on fs.
// Flag defaults mirror the viper defaults so help output stays truthful.
func RegisterFlags(fs *pflag.FlagSet, task Task) {
	fs.StringP("input", "i", "", "path of the dataset directory")
	fs.StringP("output", "o", "", "output path of records (defaults to input)")
	fs.String("format", internal.DefaultFormat, "record container format: ipc or parquet")
	fs.Int("workers", 0, "parallel workers (0 = number of CPUs)")
	fs.String("log-level", internal.DefaultLogLevel, "log level")
	fs.Bool("with-vocab", false, "use vocab.txt from the input directory instead of building one")
	fs.String("padding", internal.DefaultPaddingToken, "padding special token of vocabulary")
	fs.String("unknown", internal.DefaultUnknownToken, "unknown special token of vocabulary")
	fs.Int("sequence-length", internal.DefaultSequenceLength, "max sequence length for sentence")

	switch task {
	case TaskClassifier, TaskSimilarity:
		fs.Int("max-vocab-size", internal.DefaultMaxVocabSize, "max vocabulary size (reported, not enforced)")
		fs.String("stopwords", "", "stopwords file for building vocabulary")
		fs.Bool("with-lang-en", false, "tokenize on spaces instead of characters")
		fs.String("lang", internal.DefaultLang, "tokenization mode: word or char")
		fs.String("normalize", internal.DefaultNormalize, "unicode normalization: none, nfc or nfkc")
	}

	switch task {
	case TaskClassifier:
		fs.StringP("separator", "s", internal.DefaultSeparator, "separator between sentence and label")
		fs.Bool("with-label-id", false, "label field holds the label id instead of the class name")
	case TaskSimilarity:
		fs.String("sent-sep", internal.DefaultSeparator, "separator between text_a and text_b")
		fs.String("label-sep", internal.DefaultSeparator, "separator between text and label")
		fs.Bool("with-bool", false, "labels are true/false instead of integers")
	case TaskTagging:
		fs.StringP("separator", "s", internal.DefaultSeparator, "separator between word and tag")
		fs.String("pad-tag", internal.DefaultPaddingTag, "padding tag, always id 0")
	}
}

// flagKey maps a flag name to its configuration key for task
func flagKey(task Task, name string) (string, bool) {
	switch name {
	case "input", "output", "format", "workers", "lang", "normalize":
		return name, true
	case "log-level":
		return "log_level", true
	case "sequence-length":
		return "sequence_length", true
	case "with-lang-en":
		return "with_lang_en", true
	case "max-vocab-size":
		return "vocab.max_size", true
	case "stopwords":
		return "vocab.stopwords", true
	case "with-vocab":
		return "vocab.with_vocab", true
	case "padding":
		return "vocab.padding", true
	case "unknown":
		return "vocab.unknown", true
	case "with-label-id":
		return "classifier.with_label_id", true
	case "sent-sep":
		return "similarity.sent_sep", true
	case "label-sep":
		return "similarity.label_sep", true
	case "with-bool":
		return "similarity.with_bool", true
	case "pad-tag":
		return "tagging.pad_tag", true
	case "separator":
		if task == TaskTagging {
			return "tagging.separator", true
		}
		return "classifier.separator", true
	}
	return "", false
}

// bindFlags binds every known flag on fs. Unset flags only provide a default,
// so values from the config file or environment still win over them.
func bindFlags(v *viper.Viper, task Task, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key, ok := flagKey(task, f.Name)
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}
