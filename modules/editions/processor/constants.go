package processor

const (
	Version          = "v0.0.1"
	DBVersion        = 1
	EventHashVersion = 1
)

// DefaultStorageByteCost is the charge per stored byte in base units:
// 10^19, i.e. one whole 24-decimal token per 100k stored bytes.
const DefaultStorageByteCost uint64 = 10_000_000_000_000_000_000
