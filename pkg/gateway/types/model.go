package types

// Model describes one advertised model in the /v1/models catalog.
type Model struct {
	// ID is the model identifier clients pass in requests.
	ID string `json:"id"`

	// Object is always "model".
	Object string `json:"object"`

	// Created is the Unix timestamp the catalog entry was created.
	Created int64 `json:"created"`

	// OwnedBy names the organization that owns the model.
	OwnedBy string `json:"owned_by"`
}

// ModelList is the response body for /v1/models.
type ModelList struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data holds the advertised models.
	Data []Model `json:"data"`
}
