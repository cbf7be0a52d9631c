package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nikodp14/Panel-de-Operaciones/internal/config"
	"github.com/nikodp14/Panel-de-Operaciones/internal/server"
	"github.com/nikodp14/Panel-de-Operaciones/internal/util"
)

var (
	port    = flag.Int("port", 0, "puerto HTTP (config.toml tiene prioridad si declara port)")
	devMode = flag.Bool("dev", false, "modo desarrollo")
	dataDir = flag.String("dataDir", "", "directorio de datos (pisa el de config.toml)")
)

func main() {
	flag.Parse()

	// .env es opcional, solo para desarrollo.
	godotenv.Load()

	log := config.GetLogger()

	fmt.Println("==========================================")
	fmt.Println("  Panel de Operaciones - ML / Odoo")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.WithError(err).Warn("no se pudo cargar config.toml, se usan los defaults")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// Los flags pisan la configuración, salvo port cuando el toml lo declara.
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.WithError(err).Fatal("no se pudo crear el directorio de datos")
	}
	fmt.Printf("Directorio de datos: %s\n", dir)

	srv, err := server.New(cfg, dir)
	if err != nil {
		log.WithError(err).Fatal("no se pudo inicializar el servidor")
	}
	defer srv.Close()

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("Servidor escuchando en el puerto %d ...\n", cfg.Server.Port)
		if err := srv.Run(); err != nil {
			log.WithError(err).Fatal("el servidor no pudo arrancar")
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("Abriendo el navegador: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("No se pudo abrir el navegador, entrá manualmente a: %s\n", url)
		}
	} else {
		fmt.Printf("Modo desarrollo: abrí %s\n", url)
	}

	fmt.Println("\nCtrl+C para detener el servicio...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nCerrando el servicio...")
}
