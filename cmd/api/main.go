package main

import (
	"go.uber.org/fx"

	"github.com/skilllink/skilllink/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
