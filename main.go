package main

import (
	"os"

	"paywatch/internal/app"
	"paywatch/internal/chain"
	"paywatch/internal/config"
	"paywatch/internal/infra/nats"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load(os.Getenv("ENVPATH"))
	if err != nil {
		panic("Can't load .env file: " + err.Error())
	}

	config := config.ReadConfig()
	config.DB = postgres.Init(config)

	unixLogger := logger.Init(config)

	ledger := chain.Init(config)

	broadcaster := nats.Init(config, unixLogger)

	app := &app.App{
		Config:      config,
		Db:          config.DB,
		Ledger:      ledger,
		Broadcaster: broadcaster,
		Log:         unixLogger,
	}

	app.Start()
}
