package crossencoder

import (
	"net/http"

	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
)

// Loader builds relevance classifiers from artifact directories. Its Load
// method satisfies ports.ClassifierLoader.
type Loader struct {
	client   *http.Client
	executor *resilience.Executor
}

func NewLoader(client *http.Client, executor *resilience.Executor) *Loader {
	return &Loader{client: client, executor: executor}
}

func (l *Loader) Load(path string) (ports.RelevanceClassifier, error) {
	m, dir, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	switch m.Runtime {
	case RuntimeHTTP:
		return newHTTPClassifier(m, l.client, l.executor), nil
	default:
		classifier, err := loadLinear(m, dir)
		if err != nil {
			return nil, err
		}
		return classifier, nil
	}
}
