// web3piped runs the request pipeline as a local JSON-RPC proxy: requests
// POSTed to it are routed through the middleware chain and, when
// unresolved, forwarded to the configured upstream provider.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/web3pipe/web3pipe/params"
	"github.com/web3pipe/web3pipe/rpc"
	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

func main() {
	app := &cli.App{
		Name:    "web3piped",
		Usage:   "local JSON-RPC proxy to an upstream node provider",
		Version: params.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "network", Value: "mainnet", Usage: "upstream network name"},
			&cli.StringFlag{Name: "provider-host", Value: "infura.io", Usage: "upstream provider host"},
			&cli.StringFlag{Name: "project-id", Required: true, Usage: "upstream project credential"},
			&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8545", Usage: "listen address"},
			&cli.DurationFlag{Name: "poll-interval", Value: params.DefaultPollInterval, Usage: "block-height poll interval"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level (trace|debug|info|warn|error)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	lvl, err := log.LvlFromString(c.String("log-level"))
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

	client, err := rpc.NewClient(params.UpstreamConfig{
		ProviderHost: c.String("provider-host"),
		ProjectID:    c.String("project-id"),
		NetworkName:  c.String("network"),
		PollInterval: c.Duration("poll-interval"),
	}, nil)
	if err != nil {
		return err
	}
	if err := client.Start(); err != nil {
		return err
	}
	defer client.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		serveRPC(client, w, r)
	})

	srv := &http.Server{Addr: c.String("addr"), Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("web3piped listening", "addr", c.String("addr"), "network", c.String("network"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func serveRPC(client *rpc.Client, w http.ResponseWriter, r *http.Request) {
	var req jsonrpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, jsonrpc.NewError(nil, jsonrpc.ErrCodeInvalidRequest, "invalid JSON-RPC request"))
		return
	}

	resp, err := client.HandleRequest(r.Context(), &req)
	if err != nil {
		code := jsonrpc.ErrCodeInternal
		if errors.Is(err, rpc.ErrMethodNotSupported) {
			code = jsonrpc.ErrCodeMethodNotFound
		}
		resp = jsonrpc.NewError(&req, code, err.Error())
	}
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp *jsonrpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to write response", "error", err)
	}
}
