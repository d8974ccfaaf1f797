package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	// OpenAI configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// GreenAPI (WhatsApp) configuration
	GreenAPIInstanceID string
	GreenAPIToken      string

	// WhatsApp ID of the human manager who takes over handed-off chats
	ManagerWAID string

	// Catalog source configuration: CSV export URLs per worksheet
	OriginalSheetURL string
	SpilledSheetURL  string

	// Catalog refresh intervals
	RefreshInterval     time.Duration
	MaintenanceInterval time.Duration

	// Optional MongoDB session persistence; in-memory store when empty
	MongoURI     string
	DatabaseName string

	// Phrases that mark a model completion as ungrounded
	GuardPhrases []string

	// Server configuration
	Port string
}

// Completions containing any of these substrings mean the model could not
// ground an answer in the catalog and the user must go to a manager.
var defaultGuardPhrases = []string{
	"нет в наличии", "не нашел", "не могу помочь", "переключите на менеджера",
	"не уверен", "не распознал", "уточните у менеджера", "нет аромата", "не смог найти",
	"не продаем", "не представлено", "не доступен", "отсутствует", "нет информации",
	"в базе нет", "не реализуем", "не встречается", "недоступно", "не входит в ассортимент",
	"не могу найти информацию", "мы не занимаемся", "такого товара нет", "такого аромата нет",
	"не представлено в каталоге", "в наличии нет", "не могу найти", "нет товара",
	"обратитесь к менеджеру", "в нашем ассортименте нет", "нет продукции",
}

func LoadConfig() *Config {
	cfg := &Config{
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GreenAPIInstanceID:  os.Getenv("GREENAPI_IDINSTANCE"),
		GreenAPIToken:       os.Getenv("GREENAPI_APITOKEN"),
		ManagerWAID:         os.Getenv("MANAGER_WAID"),
		OriginalSheetURL:    os.Getenv("ORIGINAL_SHEET_CSV_URL"),
		SpilledSheetURL:     os.Getenv("SPILLED_SHEET_CSV_URL"),
		RefreshInterval:     getDuration("CATALOG_REFRESH_INTERVAL", 5*time.Minute),
		MaintenanceInterval: getDuration("CATALOG_MAINTENANCE_INTERVAL", 50*time.Minute),
		MongoURI:            os.Getenv("MONGO_URI"),
		DatabaseName:        getEnv("MONGO_DB_NAME", "perfume_bot"),
		GuardPhrases:        getList("FALLBACK_GUARD_PHRASES", defaultGuardPhrases),
		Port:                getEnv("PORT", "8000"),
	}

	validate(cfg)

	return cfg
}

// validate aborts startup when an essential credential is missing. A bot
// that cannot answer or deliver messages has nothing useful to do.
func validate(cfg *Config) {
	essentials := map[string]string{
		"OPENAI_API_KEY":      cfg.OpenAIAPIKey,
		"GREENAPI_IDINSTANCE": cfg.GreenAPIInstanceID,
		"GREENAPI_APITOKEN":   cfg.GreenAPIToken,
		"MANAGER_WAID":        cfg.ManagerWAID,
	}

	var missing []string
	for key, value := range essentials {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		slog.Error("Missing essential configuration", "keys", strings.Join(missing, ", "))
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
