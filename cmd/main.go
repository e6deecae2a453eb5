package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vitormoschetta/seguradora-chat/internal/config"
	"github.com/vitormoschetta/seguradora-chat/internal/handler"
	"github.com/vitormoschetta/seguradora-chat/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Criar servidor
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Criar handlers e rotas
	h := handler.NewHandler(srv)
	srv.SetupRouter(h)

	// Iniciar servidor
	srv.Start(ctx)
}
