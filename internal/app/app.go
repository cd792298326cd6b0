package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paywatch/internal/chain"
	"paywatch/internal/config"
	"paywatch/internal/delivery"
	"paywatch/internal/infra/nats"
	"paywatch/internal/logger"
	"paywatch/internal/service"

	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"
	"gorm.io/gorm"
)

type App struct {
	Config      *config.Config
	Db          *gorm.DB
	Ledger      chain.Ledger
	Broadcaster *nats.Broadcaster
	Log         logger.Logger
}

func (app *App) Start() {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(cors.Default())

	services := service.NewServices(app.Ledger, app.Broadcaster, app.Db, app.Log, app.Config)

	// cancelled on shutdown: the poller finishes its pass, the
	// dispatcher finishes the in-flight delivery, claimed rows stay
	// pending and are re-attempted on the next start
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Autostart(ctx, services)

	{
		h := delivery.InitHandler(services, app.Db, app.Config, app.Log)

		h.InitAPI(r)
	}

	eChan := make(chan error)
	interrupt := make(chan os.Signal, 1)

	fmt.Println("paywatch api is starting")

	go func() {
		err := r.Run(app.Config.Api.Ipv4)
		if err != nil {
			eChan <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.TemplHTTPError("app fatal error", app.Config.Api.Ipv4, err)
	case <-interrupt:
	}

	cancel()

	if app.Broadcaster != nil {
		app.Broadcaster.Close()
	}
}

// start autostart services
func (app *App) Autostart(ctx context.Context, services *service.Services) {
	fmt.Println("Autostart: start chain poller")
	services.Poller.Start(ctx)

	fmt.Println("Autostart: start webhook dispatcher")
	services.Dispatcher.Start(ctx)
}
