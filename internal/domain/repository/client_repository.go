package repository

import "github.com/jhoicas/condicional-api/internal/domain/entity"

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id int64) (*entity.Client, error)
	List(limit, offset int) ([]*entity.Client, error)
	Update(client *entity.Client) error
	Delete(id int64) error
}
