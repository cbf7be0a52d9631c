package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig es la configuración de la aplicación, leída de config.toml al
// lado del ejecutable.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Business BusinessConfig `toml:"business"`
}

// ServerConfig configura el servidor HTTP.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig configura dónde viven la base y los archivos subidos.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// BusinessConfig son las constantes de negocio de la conciliación.
type BusinessConfig struct {
	SalesCutoff     string  `toml:"sales_cutoff"`     // YYYY-MM-DD: ventas anteriores no se analizan
	VATFactor       float64 `toml:"vat_factor"`       // IVA incluido en los totales ML
	ShippingSubsidy float64 `toml:"shipping_subsidy"` // subsidio plano de envío en CLP
	MaxUploadMB     int64   `toml:"max_upload_mb"`    // tamaño máximo de planilla subida
}

// LoadConfigInfo es la metadata de cómo se cargó la configuración.
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig devuelve los valores por defecto.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    3000,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Business: BusinessConfig{
			SalesCutoff:     "2026-02-17",
			VATFactor:       1.19,
			ShippingSubsidy: 3000,
			MaxUploadMB:     10,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverAny, ok := raw["server"]
	if !ok {
		return false
	}
	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir devuelve el directorio del ejecutable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo carga config.toml y reporta metadata de la carga.
// Si el archivo no existe se usan los defaults, nunca es fatal.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := os.ReadFile(filepath.Join(exeDir, "config.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig carga config.toml del directorio del ejecutable.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig escribe la configuración a config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// EnsureDataDir crea el directorio de datos (y uploads/) junto al ejecutable.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := filepath.Join(exeDir, config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
