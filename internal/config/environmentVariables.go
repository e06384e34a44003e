package config

import (
	"log/slog"
	"time"
)

// compiled-in defaults, overridable through Load
const (
	IS_PROD               = false
	LOG_LEVEL_PROD        = slog.LevelInfo
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 5
	BURST_RATE_LIMIT      = 10

	//rag pipeline
	MaxDocumentsPerSession       = 5
	ChunkSize                    = 1000
	ChunkOverlapRatio            = 0.15
	RetrievalTopK                = 7
	ContextCharLimit             = 512
	LexicalScoreThreshold        = 0.01
	LexicalMaxFeatures           = 5000
	NoRelevantInfoAnswer         = "I couldn't find relevant information in the uploaded documents to answer your question."
	MaxUploadSize          int64 = 32 << 20 //32mb

	//vector store
	StoreBackendSQLite  = "sqlite"
	StoreBackendQdrant  = "qdrant"
	StoreBackendMemory  = "memory"
	DefaultStoreBackend = StoreBackendSQLite
	DefaultStorePath    = "./data/vector_store"
	DefaultStoreName    = "pdf_chunks"

	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation

	//embeddings
	EmbeddingProviderOllama = "ollama"
	EmbeddingProviderGoogle = "google"
	EmbeddingProviderOpenAI = "openai"
	DefaultEmbeddingModel   = "all-minilm" //MiniLM-L6-v2 sentence transformer
	GoogleEmbeddingModel    = "gemini-embedding-001"
	OpenAIEmbeddingModel    = "text-embedding-3-small"
	OllamaBaseURL           = "http://localhost:11434"

	//generation
	GenerationProviderOllama         = "ollama"
	GenerationProviderGemini         = "gemini"
	GenerationProviderOpenAI         = "openai"
	DefaultGenerationModel           = "gemma:2b"
	GeminiModelName                  = "gemini-2.5-flash-lite"
	OpenAIModelName                  = "gpt-4o-mini"
	MaxNewTokens                     = 150
	MaxInputTokens                   = 1024
	ModelTemperature         float32 = 0.7
	ModelKeepAlive                   = "10m"

	//service topology, empty url means in process
	IndexServiceTimeout      = 30 * time.Second
	GenerationServiceTimeout = 120 * time.Second
	HealthCheckTimeout       = 5 * time.Second

	//workers - one worker keeps interactions serialized
	MaxWorkerCount            int64 = 1
	MinWorkerCount            int64 = 1
	RequestsPerNewWorkerCount int64 = 10
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 3 * time.Minute

	//serverTimeouts
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 180 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening ports
	ServerListenAddr       = ":3000"
	IndexServiceListenAddr = ":8000"
	ModelServiceListenAddr = ":8001"

	//job requests buffer limit
	BufferLimit = 100

	//outbound http pool
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisSessionStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisSessionStoreTTL = 24 * time.Hour
)
