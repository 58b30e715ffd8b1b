package config

import "time"

// defaults returns the built-in configuration as a flat map of dotted
// keys, the lowest-priority layer of the loader.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"llm.provider":    "",
		"llm.model":       "",
		"llm.max_tokens":  4096,
		"llm.temperature": 0.7,
		"llm.timeout":     60 * time.Second,
		"llm.max_rpm":     0,

		"memory.backend":       "badger",
		"memory.path":          "",
		"memory.timeout":       10 * time.Second,
		"memory.redis_addr":    "localhost:6379",
		"memory.redis_prefix":  "studyloop",
		"memory.http_base_url": "",

		"outcome.driver": "sqlite",
		"outcome.dsn":    "",

		"schedule.interval": 4 * time.Hour,

		"conversation.max_exchanges": 12,

		"tutor.subject":      "Statistics 101",
		"tutor.app_id":       "studyloop",
		"tutor.user_id":      "student",
		"tutor.search_limit": 5,

		"log.level":  "info",
		"log.format": "text",
		"log.output": "stderr",
	}
}
