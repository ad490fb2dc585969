package config

const (
	// DefaultConfigFile is the config file name used when --config is not given.
	DefaultConfigFile = "store.yaml"

	// DefaultEndpointEnv and DefaultTokenEnv are the environment variables
	// consulted when the corresponding flags are absent.
	DefaultEndpointEnv = "STORESYNC_ENDPOINT"
	DefaultTokenEnv    = "STORESYNC_TOKEN"
)

// GetDefaultConfig returns an empty desired-state document. An empty
// collection means "I declare nothing about this entity family", not
// "delete everything"; deletions only arise for collections that are
// present in the document.
func GetDefaultConfig() StoreConfig {
	return StoreConfig{}
}
