// Package app wires configuration, infrastructure, and the engine into a
// running node.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/engine"
	"github.com/CryptoBia/Infinex/internal/event"
	"github.com/CryptoBia/Infinex/internal/infra"
	"github.com/CryptoBia/Infinex/internal/infra/feed"
	"github.com/CryptoBia/Infinex/internal/infra/identity"
	"github.com/CryptoBia/Infinex/internal/infra/relay"
	"github.com/CryptoBia/Infinex/internal/infra/storage"
	"github.com/CryptoBia/Infinex/internal/service"
)

// Bootstrap orchestrates the node startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Registry *infra.PairRegistry
	Store    *storage.Store
	KeyRing  *identity.KeyRing
	Balances *service.BalanceService
	Market   *service.MarketService
	Hub      *feed.Hub
	Engine   *engine.Engine
	Relay    *relay.Sender
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, keys).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("bootstrapping dexnode...")

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	b.Registry = infra.NewPairRegistry(cfg)

	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("database initialized", slog.String("path", cfg.Storage.Path))

	if cfg.Node.SeedHex != "" {
		b.KeyRing, err = identity.NewKeyRing(cfg.Node.SeedHex)
	} else {
		slog.Warn("no seed configured, using ephemeral operator key")
		b.KeyRing, err = identity.NewEphemeralKeyRing()
	}
	if err != nil {
		return err
	}
	slog.Info("operator identity ready", slog.String("pub_key", b.KeyRing.PubKey()))

	b.Balances = service.NewBalanceService()
	b.Market = service.NewMarketService()
	b.Hub = feed.NewHub(infra.GlobalMetrics)

	event.Warmup()
	return nil
}

// StartEngine builds the engine with its output hooks and starts every
// configured pair's writer.
func (b *Bootstrap) StartEngine(ctx context.Context) error {
	cfg := b.Config

	hooks := engine.Hooks{
		OnAdmitted: func(o *domain.Order) {
			if b.Relay != nil {
				b.Relay.BroadcastOrder(o)
			}
			b.publishPairView(o.PairID)
		},
		OnSettlement: func(s *domain.Settlement) {
			if err := b.Store.ArchiveSettlement(s); err != nil {
				slog.Error("failed to archive settlement",
					slog.Int64("settlement_id", s.SettlementID), slog.Any("error", err))
			}
			if b.Relay != nil {
				b.Relay.BroadcastSettlement(s)
			}
			b.publishPairView(s.PairID)
		},
		OnCandleSealed: func(c *domain.Candle) {
			if err := b.Store.ArchiveCandle(c); err != nil {
				slog.Error("failed to archive candle",
					slog.Int64("start_time", c.StartTime), slog.Any("error", err))
			}
			if b.Relay != nil {
				b.Relay.BroadcastCandle(c)
			}
			b.Hub.Broadcast("candle", c.PairID, c)
		},
		OnTrade: func(rec domain.TradeRecord) {
			b.Market.RecordTrade(rec)
			b.Hub.Broadcast("trade", rec.PairID, rec)
		},
	}

	b.Engine = engine.New(b.Registry, b.Balances, b.Store,
		b.KeyRing, b.KeyRing, infra.GlobalMetrics, hooks, cfg.Node.InboxSize)

	for _, p := range cfg.Pairs {
		if err := b.Engine.RegisterPair(ctx, p.PairID, cfg.Node.MaxSubmitDriftMs, p.RoleSet()); err != nil {
			return err
		}
	}
	return nil
}

// publishPairView refreshes the published market data for one pair. Runs on
// the pair's writer goroutine, so reading the engine state here is safe.
func (b *Bootstrap) publishPairView(pairID int32) {
	pe := b.Engine.Pair(pairID)
	if pe == nil {
		return
	}
	bids, asks := pe.DepthSnapshot(b.Config.Feed.DepthLimit)
	b.Market.UpdateDepth(pairID, bids, asks)
	b.Hub.Broadcast("depth", pairID, b.Market.Depth(pairID))

	for _, g := range domain.Granularities {
		b.Market.UpdateCandles(pairID, g, pe.Charts().Recent(g, 60))
	}
}

// ConnectRelay dials the broker and starts consuming peer traffic. A node
// without a configured relay runs standalone.
func (b *Bootstrap) ConnectRelay(ctx context.Context) error {
	cfg := b.Config
	if cfg.Relay.URL == "" {
		slog.Info("no relay configured, running standalone")
		return nil
	}

	conn, err := relay.Dial(cfg.Relay.URL,
		cfg.Relay.RetryAttempts, time.Duration(cfg.Relay.RetryDelaySec)*time.Second)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	pubCh, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := relay.DeclareExchange(pubCh, cfg.Relay.Exchange); err != nil {
		return err
	}
	b.Relay = relay.NewSender(ctx, pubCh, cfg.Relay.Exchange)

	conCh, err := conn.Channel()
	if err != nil {
		return err
	}

	orders := relay.NewProcessor(relay.JSONParser[domain.Order],
		func(ctx context.Context, o *domain.Order) {
			if o.OperatorPubKey == b.KeyRing.PubKey() {
				return // own broadcast echoed back
			}
			ev := &event.PeerOrderEvent{Order: o}
			if err := b.Engine.Enqueue(ev); err != nil {
				slog.Debug("peer order not enqueued", slog.Any("error", err))
			}
		})
	settlements := relay.NewProcessor(relay.JSONParser[domain.Settlement],
		func(ctx context.Context, s *domain.Settlement) {
			if s.OperatorPubKey == b.KeyRing.PubKey() {
				return
			}
			ev := event.AcquirePeerSettlementEvent()
			ev.Settlement = s
			if err := b.Engine.Enqueue(ev); err != nil {
				event.ReleasePeerSettlementEvent(ev)
				slog.Debug("peer settlement not enqueued", slog.Any("error", err))
			}
		})

	for _, p := range cfg.Pairs {
		queue := "dexnode." + b.KeyRing.PubKey()[:8]
		orderRK := relay.OrderKeyPrefix + strconv.Itoa(int(p.PairID))
		settleRK := relay.SettlementKeyPrefix + strconv.Itoa(int(p.PairID))
		if err := orders.Consume(ctx, conCh, cfg.Relay.Exchange, queue+"."+orderRK, orderRK); err != nil {
			return err
		}
		if err := settlements.Consume(ctx, conCh, cfg.Relay.Exchange, queue+"."+settleRK, settleRK); err != nil {
			return err
		}
	}

	slog.Info("relay connected", slog.String("exchange", cfg.Relay.Exchange))
	return nil
}

// StartFeed serves the public websocket feed.
func (b *Bootstrap) StartFeed(ctx context.Context) {
	if b.Config.Feed.Addr == "" {
		return
	}
	go b.Hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", b.Hub)

	srv := &http.Server{Addr: b.Config.Feed.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		slog.Info("feed listening", slog.String("addr", b.Config.Feed.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("feed server failed", slog.Any("error", err))
		}
	}()
}
