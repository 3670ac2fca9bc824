package main

import (
	"github.com/feastly/order-svc/internal/app"
	"github.com/feastly/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
