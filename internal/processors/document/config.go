// internal/processors/document/config.go
package document

// Engine names accepted by NewHandler.
const (
	EnginePDFCPU = "pdfcpu"
	EngineRaw    = "raw"
	EngineNone   = "none"
)

// Config selects the text engine and caps accepted payload size.
type Config struct {
	Engine       string
	MaxSizeBytes int64
}

// DefaultConfig returns the stock engine selection.
func DefaultConfig() Config {
	return Config{
		Engine:       EnginePDFCPU,
		MaxSizeBytes: 32 << 20,
	}
}
