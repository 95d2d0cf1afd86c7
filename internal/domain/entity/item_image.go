package entity

import "time"

// ItemImage representa una imagen adjunta a un ítem. Filename es el nombre
// original subido; StoredName es el nombre UUID con el que se guarda en disco.
type ItemImage struct {
	ID         string // UUID
	ItemID     int64
	Filename   string
	StoredName string
	SizeBytes  int64
	CreatedAt  time.Time
}
