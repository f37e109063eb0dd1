package main

import (
	"fmt"

	prodhttp "github.com/fwojciec/prodner/http"
)

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `env:"PRODNER_ADDR" default:":8080" help:"Listen address"`

	FetchFlags `embed:""`
	ModelFlags `embed:""`
}

// Run serves until the context is cancelled. The server starts even when
// the recognizer cannot be loaded; extraction then answers 503.
func (c *ServeCmd) Run(deps *Dependencies) error {
	svc, closeFn, err := newService(deps, c.FetchFlags, c.ModelFlags)
	if err != nil {
		return err
	}
	defer closeFn()

	server := prodhttp.NewServer(deps.registry())
	server.Addr = c.Addr
	server.Service = svc
	server.Logger = deps.logger()

	if err := server.Open(); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", server.URL())

	<-deps.Ctx.Done()
	return server.Close()
}
