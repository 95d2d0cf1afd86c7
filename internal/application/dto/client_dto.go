package dto

import "time"

// CreateClientRequest entrada para crear un cliente.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// UpdateClientRequest entrada para actualizar un cliente (patch parcial).
type UpdateClientRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
