package entity

import "time"

// Client representa un cliente de la tienda. Su existencia se valida al crear
// una condicional; no es dueño de la condicional.
type Client struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
