package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roboquant-go/roboquant/internal/account"
	"github.com/roboquant-go/roboquant/internal/broker"
	"github.com/roboquant-go/roboquant/internal/broker/cost"
	"github.com/roboquant-go/roboquant/internal/broker/pricing"
	"github.com/roboquant-go/roboquant/internal/config"
	"github.com/roboquant-go/roboquant/internal/feed/dbnfmt"
	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/journal/prom"
	"github.com/roboquant-go/roboquant/internal/kernel"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/orchestrator"
	"github.com/roboquant-go/roboquant/internal/quant"
	"github.com/roboquant-go/roboquant/internal/search"
	"github.com/roboquant-go/roboquant/internal/search/score"
	"github.com/roboquant-go/roboquant/internal/strategy"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	dataPath := flag.String("data", "", "path to a persisted binary feed file (internal/feed/dbnfmt)")
	profile := flag.String("profile", "", "orchestrator resource profile: quick, standard, thorough")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	if err := config.ApplyProfile(&cfg, *profile); err != nil {
		log.Fatalf("profile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if *dataPath == "" {
		log.Fatal("-data is required: path to a persisted binary feed file")
	}

	log.Printf("roboquant starting (run_mode=%s strategy=%s)", cfg.RunMode, cfg.Strategy.Kind)

	events, err := loadEvents(*dataPath)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}
	log.Printf("loaded %d events from %s", len(events), *dataPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	rates := ledger.NewFixedRates(nil)
	accountModel, err := buildAccountModel(cfg.Account)
	if err != nil {
		log.Fatalf("account model: %v", err)
	}
	pricingEngine, err := buildPricingEngine(cfg.Broker)
	if err != nil {
		log.Fatalf("pricing engine: %v", err)
	}
	costModel, err := buildCostModel(cfg.Broker)
	if err != nil {
		log.Fatalf("cost model: %v", err)
	}
	asset := quant.NewAsset(cfg.Strategy.Asset.Symbol, quant.AssetStock, quant.GetCurrency(cfg.Strategy.Asset.Currency), cfg.Strategy.Asset.Exchange)
	baseCurrency := quant.GetCurrency(cfg.Account.BaseCurrency)

	if cfg.Journal.Prometheus {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Printf("prometheus metrics exposed on %s", cfg.Journal.PrometheusAddr)
			if err := http.ListenAndServe(cfg.Journal.PrometheusAddr, nil); err != nil {
				log.Printf("metrics server error: %v", err)
			}
		}()
	}

	factory := func(p search.Params) (strategy.Strategy, kernel.Broker) {
		brk := broker.New(broker.Config{
			Base:           baseCurrency,
			InitialDeposit: quant.NewAmount(baseCurrency, cfg.Account.InitialDeposit),
			Rates:          rates,
			AccountModel:   accountModel,
			Pricing:        pricingEngine,
			Cost:           costModel,
		})
		return buildStrategy(cfg.Strategy, asset, p), brk
	}

	newJournal := func() journal.Journal {
		if cfg.Journal.Prometheus {
			return prom.NewSink(prometheus.DefaultRegisterer, uuid.NewString(), rates)
		}
		return journal.New(rates)
	}

	scoreFn := score.SharpeRatio(cfg.Journal.RiskFreeRate, cfg.Journal.StepsPerYear)

	orch := orchestrator.New(orchestrator.Config{
		Events:           events,
		Factory:          factory,
		NewJournal:       newJournal,
		Score:            scoreFn,
		ChannelCapacity:  cfg.Kernel.ChannelCapacity,
		HeartbeatTimeout: cfg.Kernel.HeartbeatTimeout,
		Concurrency:      cfg.Orchestrator.Concurrency,
	})

	if err := run(ctx, cfg, orch, events); err != nil {
		log.Fatalf("run: %v", err)
	}
	log.Println("run complete")
}

func run(ctx context.Context, cfg config.Config, orch *orchestrator.Orchestrator, events []quant.Event) error {
	tf := datasetTimeframe(events)

	switch cfg.RunMode {
	case "", "single":
		result, err := orch.SingleRun(ctx, tf, search.Params{}, false)
		if err != nil {
			return err
		}
		log.Printf("single run: score=%.4f run_id=%s", result.Score, result.RunID)
		return nil

	case "walkforward":
		results, err := orch.WalkForward(ctx, cfg.Orchestrator.WalkForward.Period, cfg.Orchestrator.WalkForward.Overlap, cfg.Orchestrator.WalkForward.Anchored, search.Params{})
		if err != nil {
			return err
		}
		for _, r := range results {
			log.Printf("walk-forward window %s..%s: score=%.4f", r.Timeframe.Start, r.Timeframe.End, r.Score)
		}
		return nil

	case "montecarlo":
		results, err := orch.MonteCarlo(ctx, cfg.Orchestrator.MonteCarlo.Period, cfg.Orchestrator.MonteCarlo.Samples, cfg.Orchestrator.MonteCarlo.Seed, search.Params{})
		if err != nil {
			return err
		}
		var sum float64
		for _, r := range results {
			sum += r.Score
		}
		log.Printf("monte carlo: %d samples, mean score=%.4f", len(results), sum/float64(len(results)))
		return nil

	case "optimize":
		space, err := buildSearchSpace(cfg.Search)
		if err != nil {
			return err
		}
		trainEnd := tf.Start.Add(cfg.Orchestrator.TrainPeriod)
		train := quant.Timeframe{Start: tf.Start, End: trainEnd, Inclusive: true}
		validate := quant.Timeframe{Start: trainEnd, End: trainEnd.Add(cfg.Orchestrator.ValidatePeriod), Inclusive: true}

		opt := orchestrator.NewOptimizer(orch)
		results, err := opt.Run(ctx, space, train, validate)
		if err != nil {
			return err
		}
		winner := results[len(results)-1]
		log.Printf("optimize: %d training runs, validation score=%.4f params=%v", len(results)-1, winner.Score, winner.Params)
		return nil

	default:
		return fmt.Errorf("unknown run_mode %q", cfg.RunMode)
	}
}

func datasetTimeframe(events []quant.Event) quant.Timeframe {
	if len(events) == 0 {
		return quant.Empty()
	}
	return quant.Timeframe{Start: events[0].Time, End: events[len(events)-1].Time, Inclusive: true}
}

func loadEvents(path string) ([]quant.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := dbnfmt.NewReader(f)
	if err != nil {
		return nil, err
	}
	return dbnfmt.ReadAll(r)
}

func buildAccountModel(cfg config.AccountConfig) (account.Model, error) {
	switch cfg.Model {
	case "", "cash":
		return account.CashAccount{}, nil
	case "margin":
		m := account.NewMarginAccount()
		m.Leverage = cfg.Leverage
		return m, nil
	case "regt":
		return account.RegTAccount{}, nil
	default:
		return nil, fmt.Errorf("unknown account model %q", cfg.Model)
	}
}

func buildPricingEngine(cfg config.BrokerConfig) (pricing.Engine, error) {
	switch cfg.Pricing {
	case "", "noslippage":
		return pricing.NoSlippage{}, nil
	case "fixedbps":
		return pricing.SpreadSlippage{Bps: cfg.SlippageBps}, nil
	default:
		return nil, fmt.Errorf("unknown pricing engine %q", cfg.Pricing)
	}
}

func buildCostModel(cfg config.BrokerConfig) (cost.Model, error) {
	switch cfg.Cost {
	case "", "nofee":
		return cost.NoFee{}, nil
	case "fixedbps":
		return cost.PercentageFee{Pct: cfg.FeeBps / 100}, nil
	case "pershare":
		return cost.CommissionBased{PerShare: cfg.FeePerShare}, nil
	default:
		return nil, fmt.Errorf("unknown cost model %q", cfg.Cost)
	}
}

// buildStrategy constructs the configured built-in strategy, letting p
// override these fields by name: "min_spread_bps", "spread_multiplier"
// and "inventory_skew_bps" (marketmaker); "min_imbalance", "size" and
// "depth_levels" (momentum). Other fields keep their configured values.
func buildStrategy(cfg config.StrategyConfig, asset quant.Asset, p search.Params) strategy.Strategy {
	switch cfg.Kind {
	case "momentum":
		mc := cfg.Momentum
		if v, ok := p["min_imbalance"]; ok {
			mc.MinImbalance = v
		}
		if v, ok := p["size"]; ok {
			mc.Size = v
		}
		if v, ok := p["depth_levels"]; ok {
			mc.DepthLevels = int(v)
		}
		return strategy.NewMomentum(strategy.MomentumConfig{
			Asset:        asset,
			MinImbalance: mc.MinImbalance,
			DepthLevels:  mc.DepthLevels,
			Size:         mc.Size,
			Cooldown:     mc.Cooldown,
		})
	default: // "marketmaker"
		mc := cfg.MarketMaker
		if v, ok := p["min_spread_bps"]; ok {
			mc.MinSpreadBps = v
		}
		if v, ok := p["spread_multiplier"]; ok {
			mc.SpreadMultiplier = v
		}
		if v, ok := p["inventory_skew_bps"]; ok {
			mc.InventorySkewBps = v
		}
		return strategy.NewMarketMaker(strategy.MarketMakerConfig{
			Asset:                asset,
			MinSpreadBps:         mc.MinSpreadBps,
			SpreadMultiplier:     mc.SpreadMultiplier,
			OrderSize:            mc.OrderSize,
			InventorySkewBps:     mc.InventorySkewBps,
			InventoryWidenFactor: mc.InventoryWidenFactor,
			MaxPosition:          mc.MaxPosition,
		})
	}
}

func buildSearchSpace(cfg config.SearchConfig) (search.Space, error) {
	switch cfg.Kind {
	case "", "empty":
		return search.EmptySpace{}, nil
	case "grid":
		return search.NewGridSearch(cfg.Grid), nil
	case "random":
		return search.NewRandomSearch(cfg.RandomSize, cfg.RandomLists, nil, cfg.RandomSeed), nil
	default:
		return nil, fmt.Errorf("unknown search kind %q", cfg.Kind)
	}
}

