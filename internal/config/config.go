package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HDFSConfig contains connection details for an HDFS namenode.
type HDFSConfig struct {
	Namenode string `yaml:"namenode"`
	User     string `yaml:"user"`
}

// CorpusConfig selects where review files are read from.
type CorpusConfig struct {
	Source   string      `yaml:"source"`
	BasePath string      `yaml:"base_path"`
	HDFS     *HDFSConfig `yaml:"hdfs,omitempty"`
}

// TokenizerConfig configures how review text is split into words.
type TokenizerConfig struct {
	Stem bool `yaml:"stem"`
}

// SplitConfig holds the train/dev/test proportions and the sampling seed.
type SplitConfig struct {
	Weights []float64 `yaml:"weights"`
	Seed    int64     `yaml:"seed"`
}

// VocabularyConfig configures stop-word selection and the bag-of-words vocabulary.
type VocabularyConfig struct {
	StopWords  int     `yaml:"stop_words"`
	MinDF      float64 `yaml:"min_df"`
	VocabSize  int     `yaml:"vocab_size"`
	MinDocFreq int     `yaml:"min_doc_freq"`
}

// DecisionTreeConfig configures the decision tree sweep.
type DecisionTreeConfig struct {
	MaxDepth            int     `yaml:"max_depth"`
	TunedMaxDepths      []int   `yaml:"tuned_max_depths"`
	MaxBins             int     `yaml:"max_bins"`
	MinInstancesPerNode int     `yaml:"min_instances_per_node"`
	MinInfoGain         float64 `yaml:"min_info_gain"`
	Seed                int64   `yaml:"seed"`
}

// RandomForestConfig configures the random forest sweep.
type RandomForestConfig struct {
	NumTrees        int     `yaml:"num_trees"`
	TunedNumTrees   []int   `yaml:"tuned_num_trees"`
	MaxDepth        int     `yaml:"max_depth"`
	MaxBins         int     `yaml:"max_bins"`
	FeatureSubset   string  `yaml:"feature_subset"`
	SubsamplingRate float64 `yaml:"subsampling_rate"`
	Seed            int64   `yaml:"seed"`
	Workers         int     `yaml:"workers"`
}

// FinalConfig selects the configuration refit on train+dev and scored on test.
type FinalConfig struct {
	Family     string `yaml:"family"`
	MaxDepth   int    `yaml:"max_depth"`
	NumTrees   int    `yaml:"num_trees"`
	AutoSelect bool   `yaml:"auto_select"`
}

// EvaluationConfig selects the ranking metric.
type EvaluationConfig struct {
	Metric string `yaml:"metric"`
}

// ReportConfig configures where evaluation results are kept besides stdout.
type ReportConfig struct {
	Store      string `yaml:"store"`
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus       CorpusConfig       `yaml:"corpus"`
	Tokenizer    TokenizerConfig    `yaml:"tokenizer"`
	Split        SplitConfig        `yaml:"split"`
	Vocabulary   VocabularyConfig   `yaml:"vocabulary"`
	DecisionTree DecisionTreeConfig `yaml:"decision_tree"`
	RandomForest RandomForestConfig `yaml:"random_forest"`
	Final        FinalConfig        `yaml:"final"`
	Evaluation   EvaluationConfig   `yaml:"evaluation"`
	Report       ReportConfig       `yaml:"report"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// Environment variables that override values read from the file.
const (
	EnvBasePath     = "SENTIMENT_BASE_PATH"
	EnvHDFSNamenode = "SENTIMENT_HDFS_NAMENODE"
	EnvHDFSUser     = "SENTIMENT_HDFS_USER"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Use LoadFile when the file must exist.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	// Keys missing from the file keep their Default values.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load for an explicitly named file: a missing file is an error.
func LoadFile(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return Load(path)
}

// LoadDefault tries ./config.yaml first, then ~/.config/sentiment/config.yaml.
// If neither exists, it writes defaults to ~/.config/sentiment/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	cfg.applyEnvOverrides()
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no stage can run with.
func (c *AppConfig) Validate() error {
	switch c.Corpus.Source {
	case "local":
	case "hdfs":
		if c.Corpus.HDFS == nil || c.Corpus.HDFS.Namenode == "" {
			return errors.New("config: hdfs source requires corpus.hdfs.namenode")
		}
	default:
		return fmt.Errorf("config: unknown corpus source %q", c.Corpus.Source)
	}
	if len(c.Split.Weights) != 3 {
		return fmt.Errorf("config: split.weights needs 3 entries, got %d", len(c.Split.Weights))
	}
	switch c.Final.Family {
	case "decision_tree", "random_forest":
	default:
		return fmt.Errorf("config: unknown final.family %q", c.Final.Family)
	}
	switch c.Evaluation.Metric {
	case "areaUnderROC", "areaUnderPR":
	default:
		return fmt.Errorf("config: unknown evaluation.metric %q", c.Evaluation.Metric)
	}
	switch c.Report.Store {
	case "memory":
	case "sqlite":
		if c.Report.SQLitePath == "" {
			return errors.New("config: sqlite store requires report.sqlite_path")
		}
	default:
		return fmt.Errorf("config: unknown report.store %q", c.Report.Store)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sentiment", "config.yaml"), nil
}

// Default returns the stock configuration: 0.6/0.2/0.2 split, top-100 stop words, minDF 2.
func Default() *AppConfig {
	return &AppConfig{
		Corpus:     CorpusConfig{Source: "local", BasePath: "data"},
		Split:      SplitConfig{Weights: []float64{0.6, 0.2, 0.2}, Seed: 42},
		Vocabulary: VocabularyConfig{StopWords: 100, MinDF: 2, VocabSize: 1 << 18},
		DecisionTree: DecisionTreeConfig{
			MaxDepth:            5,
			TunedMaxDepths:      []int{3, 4},
			MaxBins:             32,
			MinInstancesPerNode: 1,
			Seed:                42,
		},
		RandomForest: RandomForestConfig{
			NumTrees:        20,
			TunedNumTrees:   []int{100},
			MaxDepth:        5,
			MaxBins:         32,
			FeatureSubset:   "auto",
			SubsamplingRate: 1.0,
			Seed:            42,
		},
		Final:      FinalConfig{Family: "random_forest", MaxDepth: 5, NumTrees: 100},
		Evaluation: EvaluationConfig{Metric: "areaUnderROC"},
		Report:     ReportConfig{Store: "memory"},
		Logging:    LoggingConfig{Level: "error"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = def.Corpus.Source
	}
	if cfg.Corpus.BasePath == "" {
		cfg.Corpus.BasePath = def.Corpus.BasePath
	}
	if len(cfg.Split.Weights) == 0 {
		cfg.Split.Weights = def.Split.Weights
	}
	if cfg.Vocabulary.StopWords == 0 {
		cfg.Vocabulary.StopWords = def.Vocabulary.StopWords
	}
	if cfg.Vocabulary.MinDF == 0 {
		cfg.Vocabulary.MinDF = def.Vocabulary.MinDF
	}
	if cfg.Vocabulary.VocabSize == 0 {
		cfg.Vocabulary.VocabSize = def.Vocabulary.VocabSize
	}
	if cfg.DecisionTree.MaxDepth == 0 {
		cfg.DecisionTree.MaxDepth = def.DecisionTree.MaxDepth
	}
	if cfg.DecisionTree.TunedMaxDepths == nil {
		cfg.DecisionTree.TunedMaxDepths = def.DecisionTree.TunedMaxDepths
	}
	if cfg.DecisionTree.MaxBins == 0 {
		cfg.DecisionTree.MaxBins = def.DecisionTree.MaxBins
	}
	if cfg.DecisionTree.MinInstancesPerNode == 0 {
		cfg.DecisionTree.MinInstancesPerNode = def.DecisionTree.MinInstancesPerNode
	}
	if cfg.RandomForest.NumTrees == 0 {
		cfg.RandomForest.NumTrees = def.RandomForest.NumTrees
	}
	if cfg.RandomForest.TunedNumTrees == nil {
		cfg.RandomForest.TunedNumTrees = def.RandomForest.TunedNumTrees
	}
	if cfg.RandomForest.MaxDepth == 0 {
		cfg.RandomForest.MaxDepth = def.RandomForest.MaxDepth
	}
	if cfg.RandomForest.MaxBins == 0 {
		cfg.RandomForest.MaxBins = def.RandomForest.MaxBins
	}
	if cfg.RandomForest.FeatureSubset == "" {
		cfg.RandomForest.FeatureSubset = def.RandomForest.FeatureSubset
	}
	if cfg.RandomForest.SubsamplingRate == 0 {
		cfg.RandomForest.SubsamplingRate = def.RandomForest.SubsamplingRate
	}
	if cfg.Final.Family == "" {
		cfg.Final.Family = def.Final.Family
	}
	if cfg.Final.MaxDepth == 0 {
		cfg.Final.MaxDepth = def.Final.MaxDepth
	}
	if cfg.Final.NumTrees == 0 {
		cfg.Final.NumTrees = def.Final.NumTrees
	}
	if cfg.Evaluation.Metric == "" {
		cfg.Evaluation.Metric = def.Evaluation.Metric
	}
	if cfg.Report.Store == "" {
		cfg.Report.Store = def.Report.Store
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func (c *AppConfig) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvBasePath)); v != "" {
		c.Corpus.BasePath = v
	}
	namenode := strings.TrimSpace(os.Getenv(EnvHDFSNamenode))
	user := strings.TrimSpace(os.Getenv(EnvHDFSUser))
	if namenode == "" && user == "" {
		return
	}
	if c.Corpus.HDFS == nil {
		c.Corpus.HDFS = &HDFSConfig{}
	}
	if namenode != "" {
		c.Corpus.HDFS.Namenode = namenode
	}
	if user != "" {
		c.Corpus.HDFS.User = user
	}
}
