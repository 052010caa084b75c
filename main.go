package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spooky-finn/go-okx-orderbook/config"
	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/spooky-finn/go-okx-orderbook/helpers"
	"github.com/spooky-finn/go-okx-orderbook/infrastructure/logger"
	promclient "github.com/spooky-finn/go-okx-orderbook/infrastructure/prometheus"
	"github.com/spooky-finn/go-okx-orderbook/provider/okx"
	"github.com/spooky-finn/go-okx-orderbook/rpc"
	"github.com/spooky-finn/go-okx-orderbook/usecase"
	"google.golang.org/grpc"
)

const topLevels = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.OKX.RestURL, "r", cfg.OKX.RestURL, "REST API base URL")
	flag.StringVar(&cfg.OKX.WSURL, "w", cfg.OKX.WSURL, "WebSocket URL")
	flag.StringVar(&cfg.OKX.Symbol, "s", cfg.OKX.Symbol, "instrument id, e.g. BTC-USDT")
	flag.IntVar(&cfg.OKX.UpdateCount, "u", cfg.OKX.UpdateCount, "number of book updates to display")
	flag.Parse()

	log := logger.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.For("main")

	symbol, err := domain.NewMarketSymbolFromString(cfg.OKX.Symbol)
	if err != nil {
		return err
	}

	reg := promclient.NewRegistry()
	metrics := promclient.NewMetrics(reg)
	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := promclient.StartPromClientServer(ctx, cfg.Server.MetricsAddr, reg); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	printHeader(fmt.Sprintf("OKX Order Book - %s", symbol))
	fmt.Printf("   REST URL:  %s\n", cfg.OKX.RestURL)
	fmt.Printf("   WS URL:    %s\n", cfg.OKX.WSURL)
	fmt.Printf("   Updates:   %d\n", cfg.OKX.UpdateCount)

	syncAPI, err := okx.NewSyncAPI(cfg.OKX.RestURL, cfg.OKX.SnapshotDepth)
	if err != nil {
		return err
	}

	printHeader("Initial Order Book Snapshot")
	snapshot, err := syncAPI.Snapshot(ctx, symbol.InstID())
	if err != nil {
		return fmt.Errorf("fetch order book: %w", err)
	}
	printBook(snapshot)

	storage := domain.NewOrderBookStorage()
	maintainer := okx.NewOrderBookMaintainer(
		symbol.InstID(), syncAPI, okx.NewStreamClient(cfg.OKX.WSURL, metrics), storage, metrics,
	)
	maintainer.QueueCapacity = cfg.OKX.QueueCapacity
	maintainer.MaxResyncs = cfg.OKX.MaxResyncs
	maintainer.OnUpdate = make(chan *domain.OrderBook, 16)

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		grpcServer := grpc.NewServer()
		rpc.NewServer(
			usecase.NewOrderBookSnapshotUseCase(storage, syncAPI),
			&rpc.ValidationServiceConfig{AvailableSymbols: cfg.Server.Symbols},
		).Register(grpcServer)

		go func() {
			log.Info().Str("addr", cfg.Server.GRPCAddr).Msg("grpc server listening")
			if err := grpcServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("grpc server stopped")
			}
		}()
		defer grpcServer.GracefulStop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- maintainer.Run(ctx) }()

	printHeader("Live Updates")
	received := 0
	for received < cfg.OKX.UpdateCount {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			if err != nil {
				return err
			}
			fmt.Println("WebSocket stream closed")
			return nil
		case book := <-maintainer.OnUpdate:
			received++
			printUpdate(received, book)
		}
	}

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printSeparator()
	fmt.Printf("Received %d order book updates, %d resyncs\n", received, maintainer.Resyncs())
	printSeparator()
	return nil
}

func printSeparator() {
	fmt.Println(strings.Repeat("=", 80))
}

func printHeader(title string) {
	fmt.Println()
	printSeparator()
	fmt.Printf("  %s\n", title)
	printSeparator()
}

func printBook(ob *domain.OrderBook) {
	fmt.Printf("\nSnapshot Time: %s\n", helpers.FormatTimestamp(ob.Timestamp))
	fmt.Printf("Total Asks: %d\n", len(ob.Asks))
	fmt.Printf("Total Bids: %d\n", len(ob.Bids))

	top := ob.TakeSnapshot(topLevels)
	printLevels("TOP 10 ASKS", top.Asks)

	if abs, pct, ok := ob.Spread(); ok {
		ask, _ := ob.BestAsk()
		bid, _ := ob.BestBid()
		fmt.Println("\nMarket Spread:")
		fmt.Printf("   Best Ask:  %s\n", helpers.FormatPrice(ask.Price))
		fmt.Printf("   Best Bid:  %s\n", helpers.FormatPrice(bid.Price))
		fmt.Printf("   Spread:    %s (%.4f%%)\n", helpers.FormatPrice(abs), pct)
	}

	printLevels("TOP 10 BIDS", top.Bids)
}

func printLevels(title string, levels []domain.PriceLevel) {
	fmt.Printf("\n%s\n", title)
	fmt.Printf("%3s | %15s | %15s | %15s\n", "#", "Price", "Amount", "Total")
	for i, level := range levels {
		fmt.Printf("%3d | %s | %s | %s\n",
			i+1,
			helpers.FormatPrice(level.Price),
			helpers.FormatAmount(level.Size),
			helpers.FormatPrice(level.Price*level.Size),
		)
	}
}

func printUpdate(n int, ob *domain.OrderBook) {
	fmt.Printf("Update #%d  asks=%d bids=%d", n, len(ob.Asks), len(ob.Bids))
	if abs, pct, ok := ob.Spread(); ok {
		ask, _ := ob.BestAsk()
		bid, _ := ob.BestBid()
		fmt.Printf("  ask=%s bid=%s spread=%s (%.4f%%)",
			strings.TrimSpace(helpers.FormatPrice(ask.Price)),
			strings.TrimSpace(helpers.FormatPrice(bid.Price)),
			strings.TrimSpace(helpers.FormatPrice(abs)),
			pct,
		)
	}
	fmt.Println()
}
