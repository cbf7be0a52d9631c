package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store es la capa de persistencia SQLite: metadata del último archivo por
// dataset y códigos de despacho por venta.
type Store struct {
	db         *sql.DB
	uploadsDir string
}

// New abre (o crea) la base en dbPath y guarda los archivos subidos en
// uploadsDir.
func New(dbPath, uploadsDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de datos: %w", err)
	}
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de uploads: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la base de datos: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
	}

	// SQLite funciona mejor con una sola conexión.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, uploadsDir: uploadsDir}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("no se pudo inicializar el esquema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("no se pudo leer schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("no se pudo ejecutar el esquema: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
