package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Keys     APIKeys
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	RerankProvider    string // "jina" or "local"
	RerankModel       string
}

// PipelineConfig holds the tunables of the answering pipeline.
type PipelineConfig struct {
	RetrieveTopK        int           // candidates pulled from hybrid retrieval
	RerankTopN          int           // candidates surviving the reranker
	FusionK             float64       // reciprocal-rank fusion dampening constant
	FusedFloor          float64       // minimum fused score to keep a candidate
	SupportThreshold    float64       // minimum rerank score to support a claim
	MaxPassagesPerClaim int           // evidence bound per sub-claim
	StageTimeout        time.Duration // per-stage deadline, timeout == stage failure
	AskTopic            string        // internal bus topic for async manual asks
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/qa_worker.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			RerankProvider:    getEnv("RERANK_PROVIDER", "local"),
			RerankModel:       getEnv("RERANK_MODEL", "jina-reranker-v2-base-multilingual"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			RetrieveTopK:        getEnvAsInt("QA_RETRIEVE_TOP_K", 20),
			RerankTopN:          getEnvAsInt("QA_RERANK_TOP_N", 10),
			FusionK:             getEnvAsFloat("QA_FUSION_K", 60),
			FusedFloor:          getEnvAsFloat("QA_FUSED_FLOOR", 0.001),
			SupportThreshold:    getEnvAsFloat("QA_SUPPORT_THRESHOLD", 0.35),
			MaxPassagesPerClaim: getEnvAsInt("QA_MAX_PASSAGES_PER_CLAIM", 2),
			StageTimeout:        time.Duration(getEnvAsInt("QA_STAGE_TIMEOUT_SECONDS", 90)) * time.Second,
			AskTopic:            getEnv("QA_ASK_TOPIC_NAME", "QA_ASK"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
