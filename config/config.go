package config

type AppConfig struct {
	StoreConfig *StoreConfig
}

func New() *AppConfig {
	return &AppConfig{
		StoreConfig: NewStoreConfig(),
	}
}
