package ollama

import (
	"errors"

	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
)

const serviceName = "ollama"

// errModelMissing is returned when ollama has not pulled the configured model.
var errModelMissing = errors.New("ollama model not found")

func classifyOllamaError(err error) resilience.ErrorClassification {
	if errors.Is(err, errModelMissing) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ClassifyHTTPError(err)
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	return resilience.WrapTemporary(operation, err, classifyOllamaError)
}
