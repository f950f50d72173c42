package storage

// DefaultRegion is the AWS region used when none is configured.
const DefaultRegion = "us-east-1"

// DefaultMaxObjectSize bounds downloads read fully into memory.
const DefaultMaxObjectSize = int64(512 * 1024 * 1024)

// Config holds backend settings. The backend itself is chosen by the
// location scheme.
type Config struct {
	// Region is the AWS region for S3.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// AccessKey is the AWS access key ID. Empty uses the default credential chain.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" validate:"required_with=AccessKey"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`

	// MaxObjectSize caps the bytes read by ReadAll.
	MaxObjectSize int64 `yaml:"max_object_size" mapstructure:"max_object_size" validate:"gte=0"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
}
