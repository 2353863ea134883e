package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rmacdonaldsmith/meshchat-go/internal/config"
	"github.com/rmacdonaldsmith/meshchat-go/internal/discovery"
	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/loopback"
	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/stream"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// demoNode is the loopback radio's own node; broadcasts echo back from it.
var demoNode = transport.NodeRecord{
	Num:  0x000d0e00,
	User: &transport.UserProfile{ID: "!000d0e00", ShortName: "ECHO", LongName: "Loopback Echo"},
}

// newOpener opens the loopback demo transport or dials a real radio.
func newOpener(cfg *config.Config) transport.Opener {
	dial := stream.Opener(cfg.StreamConfig())
	return func(ctx context.Context, endpoint string) (transport.Transport, error) {
		if endpoint == loopback.Endpoint {
			return loopback.New(loopback.Options{
				Nodes: []transport.NodeRecord{demoNode},
				Echo:  true,
				Self:  demoNode.Num,
			}), nil
		}
		return dial(ctx, endpoint)
	}
}

// discoverer combines configured endpoints with discovered serial ports.
type discoverer []discovery.Discovery

func newDiscoverer(cfg *config.Config) discoverer {
	return discoverer{
		discovery.NewStaticDiscovery(cfg.Endpoints),
		discovery.NewSerialDiscovery(),
	}
}

func (d discoverer) FindEndpoints(ctx context.Context) ([]discovery.Endpoint, error) {
	var found []discovery.Endpoint
	for _, src := range d {
		eps, err := src.FindEndpoints(ctx)
		if err != nil {
			return nil, err
		}
		found = append(found, eps...)
	}
	return found, nil
}

// resolveEndpoint returns the configured endpoint, or asks the user to pick one of
// the discovered ones.
func resolveEndpoint(ctx context.Context, cfg *config.Config, d discovery.Discovery, in io.Reader, out io.Writer) (string, error) {
	if cfg.Endpoint != "" {
		return cfg.Endpoint, nil
	}

	endpoints, err := d.FindEndpoints(ctx)
	if err != nil {
		return "", err
	}
	ep, err := discovery.Select(ctx, in, out, endpoints)
	if err != nil {
		return "", fmt.Errorf("select radio: %w", err)
	}
	return ep.Name, nil
}
