package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gitlab.com/open-soft/go-vote-trader/src/config"
)

func main() {
	pwd, _ := os.Getwd()
	if _, err := os.Stat(fmt.Sprintf("%s/.env", pwd)); err == nil {
		log.Println(".env is found, loading variables...")
		err = godotenv.Load()
		if err != nil {
			log.Println(err)
		}
	}

	for _, variable := range []string{"DATABASE_DSN", "REDIS_DSN", "EXCHANGE_API_KEY", "EXCHANGE_API_SECRET", "EXCHANGE_API_DSN"} {
		if len(os.Getenv(variable)) == 0 {
			log.Fatal(fmt.Sprintf("%s is not set", variable))
		}
	}

	container := config.InitServiceContainer()
	defer container.Db.Close()

	// A crashed process may have left the lock marker behind
	container.ExecutionLock.ForceRelease()

	container.Coordinator.RestorePositions()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go container.MarketFeedService.Start(ctx)
	go container.PositionMonitor.Start(ctx)
	go container.DecisionScheduler.Start(ctx)

	container.StartHttpServer()

	log.Printf("Bot [%s] is running", container.CurrentBot.BotUuid)

	select {}
}
