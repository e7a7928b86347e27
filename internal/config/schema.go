package config

// Config is the top-level YAML structure.
type Config struct {
	Version   string                 `yaml:"version"`
	Engine    EngineConf             `yaml:"engine"`
	Sink      SinkConf               `yaml:"sink"`
	Formatter map[string]interface{} `yaml:"formatter"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Workers        int `yaml:"workers"`
	QueueDepth     int `yaml:"queue_depth"`
	EventTimeoutMs int `yaml:"event_timeout_ms"`
}

// SinkConf selects where formatted events are delivered.
type SinkConf struct {
	Type  string        `yaml:"type"` // "stdout", "redis", "none"
	Redis RedisSinkConf `yaml:"redis"`
}

// RedisSinkConf configures the Redis Streams sink.
type RedisSinkConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
}
