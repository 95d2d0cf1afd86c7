package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/jhoicas/condicional-api/internal/application/usecase"
)

var _ usecase.ImageStorage = (*LocalStorage)(nil)

// LocalStorage guarda los archivos de imagen en un directorio del disco.
// Los nombres almacenados son UUIDs generados por el caso de uso, así que
// nunca colisionan ni contienen rutas.
type LocalStorage struct {
	dir       string
	publicURL string
}

// NewLocalStorage crea el directorio si no existe y devuelve el adaptador.
func NewLocalStorage(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de uploads: %w", err)
	}
	return &LocalStorage{dir: dir, publicURL: publicURL}, nil
}

// Dir devuelve el directorio en disco (para montar como estático en el router).
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save escribe el archivo y devuelve los bytes escritos.
func (s *LocalStorage) Save(storedName string, src io.Reader) (int64, error) {
	dst, err := os.Create(filepath.Join(s.dir, filepath.Base(storedName)))
	if err != nil {
		return 0, fmt.Errorf("crear archivo: %w", err)
	}
	defer dst.Close()
	n, err := io.Copy(dst, src)
	if err != nil {
		return 0, fmt.Errorf("escribir archivo: %w", err)
	}
	return n, nil
}

// Remove borra el archivo. Ignora el caso de archivo ya inexistente.
func (s *LocalStorage) Remove(storedName string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(storedName)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("borrar archivo: %w", err)
	}
	return nil
}

// PublicURL devuelve la ruta pública del archivo.
func (s *LocalStorage) PublicURL(storedName string) string {
	return path.Join(s.publicURL, storedName)
}
