package main

import (
	"github.com/Raimguhinov/sleep-monster/internal/app"
	"github.com/Raimguhinov/sleep-monster/internal/config"
)

func main() {
	cfg := config.GetConfig()

	app.Run(cfg)
}
