package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/vitormoschetta/seguradora-chat/internal/config"
	"github.com/vitormoschetta/seguradora-chat/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	url := flag.String("url", cfg.ChatURL, "WebSocket do servidor de chat")
	sessionID := flag.String("session", "", "retoma uma sessão existente")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := tui.Dial(dialCtx, *url, *sessionID)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	m := tui.NewModel(client.Frames(), client.Send, tui.NewGlamourRenderer())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Fatalf("TUI failed: %v", err)
	}
	if err := client.Err(); err != nil {
		log.Printf("Connection closed: %v", err)
	}
}
