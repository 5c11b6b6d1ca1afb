package generator

// Config drives the synthetic data generator.
type Config struct {
	NumOrders          int
	NumUsers           int
	MaxItemsPerOrder   int
	MissingEmailChance float64
	Seed               int64
}

// DefaultConfig returns baseline settings for local load tests.
func DefaultConfig() Config {
	return Config{
		NumOrders:          1000,
		NumUsers:           200,
		MaxItemsPerOrder:   8,
		MissingEmailChance: 0.05,
		Seed:               42,
	}
}
