package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"vendfleet/internal/config"
	"vendfleet/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: migrate [command]")
		fmt.Println("Commands: up, down, status, redo")
		os.Exit(1)
	}
	command := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("running migration: %s", command)
	if err := migrations.Run(ctx, cfg.DatabaseURL, command); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration finished")
}
