package condicional

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ItemRef referencia de usuario a un ítem: ID explícito o nombre libre.
// Al menos uno de los dos debe venir informado.
type ItemRef struct {
	ID   int64
	Name string
}

// nameNormalizer elimina marcas diacríticas (NFD + descarte de Mn) para que
// "camisón" y "camison" resuelvan al mismo ítem.
var nameNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeItemName normaliza un nombre para búsqueda: trim, minúsculas y sin tildes.
func NormalizeItemName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	out, _, err := transform.String(nameNormalizer, s)
	if err != nil {
		return s
	}
	return out
}

// ResolveItem resuelve la referencia contra el repositorio recibido (atado a la
// transacción del caller). Por ID es búsqueda directa; por nombre intenta
// primero coincidencia exacta del nombre normalizado y luego subcadena.
// Si la subcadena coincide con más de un ítem devuelve AmbiguousItemNameError
// en lugar de elegir uno en silencio; con exactamente uno, ese gana.
// Solo lee: la verificación de stock suficiente es responsabilidad del caller.
func ResolveItem(itemRepo repository.ItemRepository, ref ItemRef) (*entity.Item, error) {
	if ref.ID > 0 {
		item, err := itemRepo.GetByID(ref.ID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, &domain.ItemNotFoundError{ID: ref.ID}
		}
		return item, nil
	}

	name := NormalizeItemName(ref.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	item, err := itemRepo.GetByExactName(name)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}

	matches, err := itemRepo.SearchByName(name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, &domain.ItemNotFoundError{Name: ref.Name}
	case 1:
		return matches[0], nil
	default:
		ids := make([]int64, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, &domain.AmbiguousItemNameError{Name: ref.Name, Matches: ids}
	}
}
