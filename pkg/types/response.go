package types

import "github.com/andresfq/registry-backend/pkg/pagination"

// Envelope is the response shape every endpoint returns: success plus a
// human-readable message, with data, field errors and pagination as needed.
type Envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Errors     any              `json:"errors,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}
