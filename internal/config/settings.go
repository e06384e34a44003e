package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration shared by the api, vectorstore and model binaries.
type Settings struct {
	Server     ServerSettings     `yaml:"server"`
	Log        LogSettings        `yaml:"log"`
	RAG        RAGSettings        `yaml:"rag"`
	Store      StoreSettings      `yaml:"store"`
	Embedding  EmbeddingSettings  `yaml:"embedding"`
	Generation GenerationSettings `yaml:"generation"`
	Services   ServiceSettings    `yaml:"services"`
	Redis      RedisSettings      `yaml:"redis"`
	Worker     WorkerSettings     `yaml:"worker"`
	RateLimit  RateLimitSettings  `yaml:"rate_limit"`
}

type ServerSettings struct {
	APIAddr   string `yaml:"api_addr"`
	IndexAddr string `yaml:"index_addr"`
	ModelAddr string `yaml:"model_addr"`
	UploadDir string `yaml:"upload_dir"`
	MaxUpload int64  `yaml:"max_upload_bytes"`
}

func (s ServerSettings) MaxUploadSize() int64 {
	if s.MaxUpload <= 0 {
		return MaxUploadSize
	}
	return s.MaxUpload
}

type LogSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type RAGSettings struct {
	MaxDocuments       int     `yaml:"max_documents"`
	ChunkSize          int     `yaml:"chunk_size"`
	ChunkOverlapRatio  float64 `yaml:"chunk_overlap_ratio"`
	TopK               int     `yaml:"top_k"`
	ContextCharLimit   int     `yaml:"context_char_limit"`
	LexicalThreshold   float64 `yaml:"lexical_threshold"`
	LexicalMaxFeatures int     `yaml:"lexical_max_features"`
}

// ChunkOverlap is the overlap in characters derived from the ratio.
func (r RAGSettings) ChunkOverlap() int {
	return int(float64(r.ChunkSize) * r.ChunkOverlapRatio)
}

type StoreSettings struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
	QdrantTLS  bool   `yaml:"qdrant_tls"`
}

type EmbeddingSettings struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
	Preload    bool   `yaml:"preload"`
}

type GenerationSettings struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	MaxNewTokens   int     `yaml:"max_new_tokens"`
	MaxInputTokens int     `yaml:"max_input_tokens"`
	Temperature    float32 `yaml:"temperature"`
	KeepAlive      string  `yaml:"keep_alive"`
	Preload        bool    `yaml:"preload"`
}

type ServiceSettings struct {
	IndexURL          string        `yaml:"index_url"`
	ModelURL          string        `yaml:"model_url"`
	IndexTimeout      time.Duration `yaml:"index_timeout"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	HealthTimeout     time.Duration `yaml:"health_timeout"`
}

type RedisSettings struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	JobTTL     time.Duration `yaml:"job_ttl"`
	Disabled   bool          `yaml:"disabled"`
}

type WorkerSettings struct {
	MaxWorkers  int64         `yaml:"max_workers"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	JobTimeout  time.Duration `yaml:"job_timeout"`
}

type RateLimitSettings struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func Default() Settings {
	return Settings{
		Server: ServerSettings{
			APIAddr:   ServerListenAddr,
			IndexAddr: IndexServiceListenAddr,
			ModelAddr: ModelServiceListenAddr,
			UploadDir: "temporary_data",
			MaxUpload: MaxUploadSize,
		},
		Log: LogSettings{Level: "debug", JSON: IS_PROD},
		RAG: RAGSettings{
			MaxDocuments:       MaxDocumentsPerSession,
			ChunkSize:          ChunkSize,
			ChunkOverlapRatio:  ChunkOverlapRatio,
			TopK:               RetrievalTopK,
			ContextCharLimit:   ContextCharLimit,
			LexicalThreshold:   LexicalScoreThreshold,
			LexicalMaxFeatures: LexicalMaxFeatures,
		},
		Store: StoreSettings{
			Backend:    DefaultStoreBackend,
			Path:       DefaultStorePath,
			Name:       DefaultStoreName,
			QdrantHost: QdrantHost,
			QdrantPort: QdrantGrpcPort,
			QdrantTLS:  QdrantUseTLS,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderOllama,
			Model:    DefaultEmbeddingModel,
			BaseURL:  OllamaBaseURL,
			Preload:  true,
		},
		Generation: GenerationSettings{
			Provider:       GenerationProviderOllama,
			Model:          DefaultGenerationModel,
			BaseURL:        OllamaBaseURL,
			MaxNewTokens:   MaxNewTokens,
			MaxInputTokens: MaxInputTokens,
			Temperature:    ModelTemperature,
			KeepAlive:      ModelKeepAlive,
			Preload:        true,
		},
		Services: ServiceSettings{
			IndexTimeout:      IndexServiceTimeout,
			GenerationTimeout: GenerationServiceTimeout,
			HealthTimeout:     HealthCheckTimeout,
		},
		Redis: RedisSettings{
			Addr:       RedisAddr,
			SessionTTL: RedisSessionStoreTTL,
			JobTTL:     RedisJobStoreTTL,
		},
		Worker: WorkerSettings{
			MaxWorkers:  MaxWorkerCount,
			IdleTimeout: IdleWorkerTimeout,
			JobTimeout:  JobTimeout,
		},
		RateLimit: RateLimitSettings{
			PerSecond: RATE_LIMIT_PER_SECOND,
			Burst:     BURST_RATE_LIMIT,
		},
	}
}

// Load layers the defaults, an optional yaml file, a .env file and the process environment.
func Load(path string) (Settings, error) {
	settings := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &settings); err != nil {
			return settings, fmt.Errorf("parsing config file: %w", err)
		}
	}

	//a missing .env is fine
	_ = godotenv.Load()

	if err := applyEnv(&settings); err != nil {
		return settings, err
	}
	return settings, settings.Validate()
}

func (s Settings) Validate() error {
	var errs []error
	if s.RAG.MaxDocuments < 1 {
		errs = append(errs, errors.New("rag.max_documents must be positive"))
	}
	if s.RAG.ChunkSize < 1 {
		errs = append(errs, errors.New("rag.chunk_size must be positive"))
	}
	if s.RAG.ChunkOverlapRatio < 0 || s.RAG.ChunkOverlapRatio >= 1 {
		errs = append(errs, errors.New("rag.chunk_overlap_ratio must be in [0,1)"))
	}
	if s.RAG.TopK < 1 {
		errs = append(errs, errors.New("rag.top_k must be positive"))
	}
	if s.RAG.ContextCharLimit < 1 {
		errs = append(errs, errors.New("rag.context_char_limit must be positive"))
	}
	switch s.Store.Backend {
	case StoreBackendSQLite, StoreBackendQdrant, StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", s.Store.Backend))
	}
	switch s.Embedding.Provider {
	case EmbeddingProviderOllama, EmbeddingProviderGoogle, EmbeddingProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", s.Embedding.Provider))
	}
	switch s.Generation.Provider {
	case GenerationProviderOllama, GenerationProviderGemini, GenerationProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown generation provider %q", s.Generation.Provider))
	}
	if s.Worker.MaxWorkers < 1 {
		errs = append(errs, errors.New("worker.max_workers must be positive"))
	}
	return errors.Join(errs...)
}

func applyEnv(s *Settings) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	envString(&s.Server.APIAddr, "API_LISTEN_ADDR")
	envString(&s.Server.IndexAddr, "INDEX_LISTEN_ADDR")
	envString(&s.Server.ModelAddr, "MODEL_LISTEN_ADDR")
	envString(&s.Server.UploadDir, "UPLOAD_DIR")

	envString(&s.Log.Level, "LOG_LEVEL")
	collect(envBool(&s.Log.JSON, "LOG_JSON"))

	collect(envInt(&s.RAG.MaxDocuments, "RAG_MAX_DOCUMENTS"))
	collect(envInt(&s.RAG.ChunkSize, "RAG_CHUNK_SIZE"))
	collect(envFloat(&s.RAG.ChunkOverlapRatio, "RAG_CHUNK_OVERLAP_RATIO"))
	collect(envInt(&s.RAG.TopK, "RAG_TOP_K"))
	collect(envInt(&s.RAG.ContextCharLimit, "RAG_CONTEXT_CHAR_LIMIT"))
	collect(envFloat(&s.RAG.LexicalThreshold, "RAG_LEXICAL_THRESHOLD"))

	envString(&s.Store.Backend, "VECTOR_STORE_BACKEND")
	envString(&s.Store.Path, "VECTOR_STORE_PATH")
	envString(&s.Store.Name, "VECTOR_STORE_NAME")
	envString(&s.Store.QdrantHost, "QDRANT_HOST")
	collect(envInt(&s.Store.QdrantPort, "QDRANT_PORT"))

	envString(&s.Embedding.Provider, "EMBEDDING_PROVIDER")
	envString(&s.Embedding.Model, "EMBEDDING_MODEL")
	envString(&s.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	envString(&s.Embedding.APIKey, "EMBEDDING_API_KEY")
	collect(envBool(&s.Embedding.Preload, "EMBEDDING_PRELOAD"))

	envString(&s.Generation.Provider, "GENERATION_PROVIDER")
	envString(&s.Generation.Model, "GENERATION_MODEL")
	envString(&s.Generation.BaseURL, "GENERATION_BASE_URL")
	envString(&s.Generation.APIKey, "GENERATION_API_KEY")
	collect(envInt(&s.Generation.MaxNewTokens, "GENERATION_MAX_NEW_TOKENS"))
	collect(envBool(&s.Generation.Preload, "GENERATION_PRELOAD"))

	envString(&s.Services.IndexURL, "INDEX_SERVICE_URL")
	envString(&s.Services.ModelURL, "MODEL_SERVICE_URL")
	collect(envDuration(&s.Services.IndexTimeout, "INDEX_SERVICE_TIMEOUT"))
	collect(envDuration(&s.Services.GenerationTimeout, "MODEL_SERVICE_TIMEOUT"))

	envString(&s.Redis.Addr, "REDIS_ADDR")
	envString(&s.Redis.Password, "REDIS_PASSWORD")
	collect(envBool(&s.Redis.Disabled, "REDIS_DISABLED"))

	return errors.Join(errs...)
}

func envString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*target = strings.TrimSpace(v)
	}
}

func envInt(target *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = n
	return nil
}

func envFloat(target *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = f
	return nil
}

func envBool(target *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = b
	return nil
}

func envDuration(target *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = d
	return nil
}
