package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Elastic    ElasticConfig    `mapstructure:"elastic"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Persona    PersonaConfig    `mapstructure:"persona"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ElasticConfig struct {
	URL         string `mapstructure:"url"`
	APIKey      string `mapstructure:"api_key"`
	InferenceID string `mapstructure:"inference_id"`
}

type GeminiConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// ExtractionConfig selects and configures the extraction strategy used
// for onboarding. Strategy is "site" (whole-site prompt-driven) or
// "pages" (bounded multi-page crawl with per-page extraction).
type ExtractionConfig struct {
	Strategy string `mapstructure:"strategy"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	MaxPages int    `mapstructure:"max_pages"`
}

type CrawlerConfig struct {
	Binary     string `mapstructure:"binary"`
	Image      string `mapstructure:"image"`
	MaxDepth   int    `mapstructure:"max_depth"`
	ScratchDir string `mapstructure:"scratch_dir"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

// PersonaConfig externalizes the assistant's voice and sales framing so
// the core stays brand-agnostic.
type PersonaConfig struct {
	Name          string `mapstructure:"name"`
	Brand         string `mapstructure:"brand"`
	Style         string `mapstructure:"style"`
	CrawlFirstMsg string `mapstructure:"crawl_first_msg"`
	FallbackMsg   string `mapstructure:"fallback_msg"`
}

type SpeechConfig struct {
	AssemblyAIKey string `mapstructure:"assemblyai_key"`
	ElevenLabsKey string `mapstructure:"elevenlabs_key"`
	VoiceID       string `mapstructure:"voice_id"`
	TTSModel      string `mapstructure:"tts_model"`
}

// ArchiveConfig configures optional object-storage archival of captured
// crawl logs. Disabled when the bucket is empty.
type ArchiveConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.path", "./data/tenants.db")
	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.inference_id", ".elser-2-elastic")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("extraction.strategy", "site")
	v.SetDefault("extraction.base_url", "https://api.firecrawl.dev")
	v.SetDefault("extraction.max_pages", 10)
	v.SetDefault("crawler.binary", "docker")
	v.SetDefault("crawler.image", "docker.elastic.co/integrations/crawler:latest")
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.scratch_dir", "./temp_crawls")
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("persona.name", "AI Sales Associate")
	v.SetDefault("persona.brand", "this store")
	v.SetDefault("persona.style", "Professional, enthusiastic, but concise.")
	v.SetDefault("persona.crawl_first_msg",
		"I couldn't find a crawl index for this site yet. Please crawl the site and try again.")
	v.SetDefault("persona.fallback_msg",
		"I'm sorry, I don't have that information right now, but I'd love to help with something else!")
	v.SetDefault("speech.voice_id", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("speech.tts_model", "eleven_multilingual_v2")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("elastic.url", "ELASTIC_URL")
	v.BindEnv("elastic.api_key", "ELASTIC_API_KEY")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("extraction.api_key", "EXTRACT_API_KEY")
	v.BindEnv("speech.assemblyai_key", "ASSEMBLYAI_API_KEY")
	v.BindEnv("speech.elevenlabs_key", "ELEVENLABS_API_KEY")
	v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("archive.bucket", "ARCHIVE_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
