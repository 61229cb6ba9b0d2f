package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	cardioedge "github.com/FIAP-IA2024/CARDIO-IOT-edge"
)

func main() {
	rt, err := cardioedge.Open("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("agent exited: %v", err)
	}
}
