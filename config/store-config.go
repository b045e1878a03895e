package config

// StoreConfig describes the backing file of a persistent store. The
// store never creates or resizes the file, Path must point to an
// existing, pre-sized regular file.
type StoreConfig struct {
	Path    string
	Reset   bool
	MapAddr uintptr
}

func NewStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:    "scm.bin",
		Reset:   false,
		MapAddr: 0,
	}
}
