package config

const (
	PolicyContentHash = "content-hash"
	PolicyPresence    = "presence"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	applyLLMDefaults(&cfg.LLM, "gpt-3.5-turbo")
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	applyLLMDefaults(&cfg.EmbedLLM, "text-embedding-ada-002")
	if cfg.EmbedLLM.BatchSize == 0 {
		cfg.EmbedLLM.BatchSize = 512
	}

	if cfg.RAG.ContentDir == "" {
		cfg.RAG.ContentDir = "inputs/contents"
	}
	if cfg.RAG.Extensions == nil {
		cfg.RAG.Extensions = []string{".txt", ".pdf"}
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1024
	}
	if cfg.RAG.ChunkOverlap == nil {
		cfg.RAG.ChunkOverlap = intPtr(16)
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.RAG.FetchK == 0 {
		cfg.RAG.FetchK = 20
	}
	if cfg.RAG.LambdaMult == nil {
		lambda := 0.5
		cfg.RAG.LambdaMult = &lambda
	}
	if cfg.RAG.Compress == nil {
		t := true
		cfg.RAG.Compress = &t
	}
	if cfg.RAG.CondenseQuestion == nil {
		t := true
		cfg.RAG.CondenseQuestion = &t
	}

	if cfg.Index.Folder == "" {
		cfg.Index.Folder = "output/chromem_index_chatbot"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "chromem_0"
	}
	if cfg.Index.FreshnessPolicy == "" {
		cfg.Index.FreshnessPolicy = PolicyContentHash
	}

	if cfg.Profile.JobQualificationsPath == "" {
		cfg.Profile.JobQualificationsPath = "output/jd.txt"
	}

	if cfg.Chat.RevealDelayMS == nil {
		cfg.Chat.RevealDelayMS = intPtr(50)
	}
	if cfg.Chat.Greeting == "" {
		cfg.Chat.Greeting = "How may I help you?"
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 3600
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

func applyLLMDefaults(c *LLMConfig, model string) {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.KeyEnv == "" && c.Provider == "openai" {
		c.KeyEnv = "OPENAI_API_KEY"
	}
}

func intPtr(n int) *int { return &n }
