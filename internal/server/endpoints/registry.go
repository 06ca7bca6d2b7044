package endpoints

import (
	"github.com/quicktalog/quicktalog/internal/api"
)

// All returns every endpoint the server exposes.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&GenerateAIEndpoint{},
		&GenerateOCREndpoint{},
		&GetCatalogueEndpoint{},
		&ListCataloguesEndpoint{},
	}
}
