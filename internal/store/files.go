package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound se devuelve cuando un dataset no tiene archivo cargado aún.
var ErrNotFound = errors.New("dataset sin archivo cargado")

// FileInfo es la metadata del último archivo de un dataset.
type FileInfo struct {
	Dataset    string `json:"dataset"`
	FileName   string `json:"file"`
	UploadedAt string `json:"uploadedAt"` // ISO 8601
	storedPath string
}

// SaveLatest persiste un archivo nuevo como "el último" del dataset. El
// anterior se reemplaza: la política es el más reciente gana, sin historial.
func (s *Store) SaveLatest(dataset, originalName string, data []byte) (*FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".xlsx"
	}

	now := time.Now()
	stored := fmt.Sprintf("%s-%s-%s%s", dataset, now.Format("20060102-150405"), uuid.New().String()[:8], ext)
	storedPath := filepath.Join(s.uploadsDir, stored)

	if err := os.WriteFile(storedPath, data, 0644); err != nil {
		return nil, fmt.Errorf("no se pudo guardar el archivo: %w", err)
	}

	prev, err := s.LatestInfo(dataset)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	info := &FileInfo{
		Dataset:    dataset,
		FileName:   stored,
		UploadedAt: now.Format(time.RFC3339),
		storedPath: storedPath,
	}

	_, err = s.db.Exec(`
		INSERT INTO datasets (dataset, file_name, stored_path, uploaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(dataset) DO UPDATE SET
			file_name = excluded.file_name,
			stored_path = excluded.stored_path,
			uploaded_at = excluded.uploaded_at
	`, info.Dataset, info.FileName, info.storedPath, info.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("no se pudo registrar el archivo: %w", err)
	}

	// El archivo anterior ya no es alcanzable; borrarlo es best effort.
	if prev != nil && prev.storedPath != storedPath {
		os.Remove(prev.storedPath)
	}
	return info, nil
}

// LatestInfo devuelve la metadata del último archivo del dataset.
func (s *Store) LatestInfo(dataset string) (*FileInfo, error) {
	info := &FileInfo{}
	err := s.db.QueryRow(`
		SELECT dataset, file_name, stored_path, uploaded_at
		FROM datasets WHERE dataset = ?
	`, dataset).Scan(&info.Dataset, &info.FileName, &info.storedPath, &info.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("no se pudo consultar el dataset %q: %w", dataset, err)
	}
	return info, nil
}

// LatestBytes devuelve la metadata y el contenido del último archivo.
func (s *Store) LatestBytes(dataset string) (*FileInfo, []byte, error) {
	info, err := s.LatestInfo(dataset)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(info.storedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("no se pudo leer el archivo de %q: %w", dataset, err)
	}
	return info, data, nil
}
