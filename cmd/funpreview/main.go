package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/funpreview/internal/analyzer"
	"github.com/ivlev/funpreview/internal/chapters"
	"github.com/ivlev/funpreview/internal/colormap"
	"github.com/ivlev/funpreview/internal/config"
	"github.com/ivlev/funpreview/internal/engine"
	"github.com/ivlev/funpreview/internal/export"
	"github.com/ivlev/funpreview/internal/renderer"
	"github.com/ivlev/funpreview/internal/source"
	"github.com/ivlev/funpreview/internal/system"
)

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/scripts", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "Путь к YAML-конфигу (необязательно)")
	flag.String("input", "", "Путь к .funscript (по умолчанию: самый свежий файл в input/scripts/)")
	flag.String("target", "", "Второй .funscript для вычисления смещения относительно -input")
	flag.String("output", "", "Папка для превью (по умолчанию: output/)")
	flag.String("format", "", "Формат превью: png, rgba")
	flag.Int("width", 0, "Ширина превью")
	flag.Int("height", 0, "Высота таймлайна")
	flag.Int("heatmap-height", 0, "Высота тепловой карты")
	flag.String("detail", "", "Режим таймлайна: envelope, speed")
	flag.Int("workers", 0, "Потоки рендеринга (минимум 2)")
	flag.Float64("prominence", 0, "Минимальная выраженность пиков для выравнивания")
	flag.Float64("fps", 0, "FPS видео для пересчета глав")
	flag.Bool("stats", false, "Показать статистику скрипта и производительности")
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			logrus.Fatalf("[-] Ошибка конфига: %v", err)
		}
		cfg = loaded
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("[-] %v", err)
	}

	log, err := config.NewLogger(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		logrus.Fatalf("[-] Ошибка логгера: %v", err)
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestScript("input/scripts")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите .funscript в input/scripts/", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

// applyFlags copies every flag given on the command line over cfg.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		g := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "input":
			cfg.InputPath = g.(string)
		case "target":
			cfg.TargetPath = g.(string)
		case "output":
			cfg.OutputDir = g.(string)
		case "format":
			cfg.Format = g.(string)
		case "width":
			cfg.TimelineWidth = g.(int)
			cfg.HeatmapWidth = g.(int)
		case "height":
			cfg.TimelineHeight = g.(int)
		case "heatmap-height":
			cfg.HeatmapHeight = g.(int)
		case "detail":
			cfg.Detail = g.(string)
		case "workers":
			cfg.Workers = g.(int)
		case "prominence":
			cfg.Prominence = g.(float64)
		case "fps":
			cfg.FPS = g.(float64)
		case "stats":
			cfg.ShowStats = g.(bool)
		}
	})
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	start := time.Now()

	src, err := source.NewFileSource(cfg.InputPath)
	if err != nil {
		return err
	}
	store := source.NewStore()
	if err := src.Load(store); err != nil {
		return err
	}

	actions := store.Snapshot(source.AxisPrimary)
	last, ok := actions.Last()
	if !ok {
		return fmt.Errorf("в скрипте %s нет действий", cfg.InputPath)
	}
	duration := float64(last.At) / 1000.0

	fmt.Println("--- [FUNSCRIPT PREVIEW] ---")
	fmt.Printf("[*] Источник: %s | Действий: %d | Длительность: %.2fs\n", src.Path(), len(actions), duration)
	fmt.Printf("[*] Таймлайн: %dx%d (%s) | Тепловая карта: %dx%d\n",
		cfg.TimelineWidth, cfg.TimelineHeight, cfg.Detail, cfg.HeatmapWidth, cfg.HeatmapHeight)
	fmt.Println("-----------------------------")

	stats := source.ComputeStats(actions)
	if cfg.ShowStats {
		printStats(stats)
	}

	chs := chapters.New(log)
	chs.FromMarks(src.Chapters(), cfg.FPS)
	for _, c := range chs.Chapters() {
		fmt.Printf("[*] Глава %s (%d кадров)\n", c, c.Frames())
	}

	detail, err := renderer.ParseDetail(cfg.Detail)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	pool := engine.NewPool(engine.PoolConfig{
		Workers:    cfg.Workers,
		QueueSize:  cfg.QueueSize,
		ResultSize: cfg.ResultSize,
	}, engine.RendererFunc(renderer.New(colormap.NewDefault())), log)
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Shutdown()

	pv := engine.NewPreviewer(pool, engine.NewPolicy(cfg.LiveThrottle), store)
	pv.Detail = detail
	pv.Tick(engine.KindTimeline, cfg.TimelineWidth, cfg.TimelineHeight, duration)
	pv.Tick(engine.KindHeatmap, cfg.HeatmapWidth, cfg.HeatmapHeight, duration)

	results, err := collect(ctx, pool, 2, cfg.Timeout)
	if err != nil {
		return err
	}
	renderEnd := time.Now()

	for kind, res := range engine.Latest(results) {
		path := export.ResultPath(cfg.OutputDir, cfg.InputPath, kind, format)
		err := export.Write(path, res.Image, format)
		res.Release()
		if err != nil {
			return err
		}
		fmt.Printf("[>] Готово: %s\n", path)
	}

	if cfg.TargetPath != "" {
		if err := alignTarget(actions, cfg, log); err != nil {
			return err
		}
	}

	if cfg.ShowStats {
		ps := pool.Stats()
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Total Time: %.2fs\n"+
				"Rendering: %.2fs\n"+
				"Tasks: submitted %d, completed %d, dropped %d, failed %d\n"+
				"%s\n"+
				"----------------------------\n",
			time.Since(start).Seconds(), renderEnd.Sub(start).Seconds(),
			ps.Submitted, ps.Completed, ps.Dropped, ps.Failed,
			system.MemoryReport(),
		)
	}
	return nil
}

// collect waits for n results, giving up after timeout.
func collect(ctx context.Context, pool *engine.Pool, n int, timeout time.Duration) ([]engine.Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var out []engine.Result
	for len(out) < n {
		select {
		case r := <-pool.Results():
			out = append(out, r)
		case <-timer.C:
			return out, fmt.Errorf("превью не готовы за %v (получено %d из %d)", timeout, len(out), n)
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}

func alignTarget(ref source.Sequence, cfg *config.Config, log *logrus.Logger) error {
	target, err := source.NewFileSource(cfg.TargetPath)
	if err != nil {
		return err
	}
	det, err := analyzer.NewDetector("extrema", cfg.Prominence)
	if err != nil {
		return err
	}

	res := analyzer.NewAligner(det, log).Align(ref, target.Actions(source.AxisPrimary))
	if res.Err != nil {
		fmt.Printf("[!] Смещение не вычислено: %v (пиков: %d / %d)\n", res.Err, res.RefFeatures, res.TargetFeatures)
		return nil
	}
	fmt.Printf("[+] Смещение %s относительно %s: %d мс (пиков: %d / %d)\n",
		cfg.TargetPath, cfg.InputPath, res.OffsetMs, res.RefFeatures, res.TargetFeatures)
	return nil
}

func printStats(s source.Stats) {
	fmt.Printf(
		"--- [SCRIPT STATS] ---\n"+
			"Points: %d\n"+
			"Scripted: %.2fs\n"+
			"Avg speed: %.1f pos/s\n"+
			"Avg intensity: %.1f%%\n"+
			"Range: %d-%d\n"+
			"Interval: min %d ms, avg %.1f ms, max %d ms\n"+
			"Travel: %d | Strokes: %d\n"+
			"----------------------\n",
		s.NumPoints, s.DurationScripted, s.AvgSpeed, s.AvgIntensity,
		s.MinPos, s.MaxPos,
		s.MinIntervalMs, s.AvgIntervalMs, s.MaxIntervalMs,
		s.TotalTravel, s.NumStrokes,
	)
}
