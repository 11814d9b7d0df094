package domain

// Error kind constants produced by the classifier.
const (
	ErrorKindAuth       = "auth"
	ErrorKindPermission = "permission"
	ErrorKindNetwork    = "network"
	ErrorKindValidation = "validation"
	ErrorKindServer     = "server"
	ErrorKindUnknown    = "unknown"
)

// ErrorRecord is the normalized form of a failed remote call.
type ErrorRecord struct {
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Retriable bool              `json:"retriable"`
	Status    int               `json:"status,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}
