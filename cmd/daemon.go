package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/daemon"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/reportcache"
)

const reportCacheEntries = 64

var (
	flagDaemonAddr         string
	flagDaemonSchedule     string
	flagDaemonRedis        string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Recompute forecasts on a schedule and serve them over HTTP/SSE",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.StringVar(&flagDaemonSchedule, "schedule", "", "Cron schedule for recomputes (default from config)")
	pf.StringVar(&flagDaemonRedis, "redis", "", "Redis address for the shared report cache")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(pipeline.CacheDir(), "ledgercastd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(pipeline.CacheDir(), "ledgercastd.log"), "Log file for detached mode")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonSchedule == "" {
		flagDaemonSchedule = cfg.Daemon.Schedule
	}

	if !flagDaemonDetach {
		return runDaemonForeground(cfg)
	}
	if os.Getenv(childEnv) != "" {
		return errors.New("detached daemon tried to detach again")
	}

	if err := pidFile(flagDaemonPIDFile).claim(); err != nil {
		return err
	}
	pid, err := spawnDetached(flagDaemonLogFile)
	if err != nil {
		return err
	}
	fmt.Printf("  Started daemon (pid %d)\n", pid)
	fmt.Printf("  API: http://%s/v1/report\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func newDaemonLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func runDaemonForeground(cfg config.Config) error {
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.claim(); err != nil {
		return err
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.GetDataDir(cfg)
	}
	log := newDaemonLogger()
	opts, err := loadOptions(cfg)
	if err != nil {
		return err
	}
	opts.Logger = log

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reports := openReportCache(ctx, cfg, log)
	defer func() { _ = reports.Close() }()

	months := flagMonths
	if months < 1 {
		months = cfg.General.HistoryMonths
	}
	ahead := flagAhead
	if ahead < 1 {
		ahead = cfg.General.MonthsAhead
	}

	svc, err := daemon.New(daemon.Config{
		DataDir:       dataDir,
		Load:          opts,
		UseCache:      !flagNoCache,
		HistoryMonths: months,
		MonthsAhead:   ahead,
		Schedule:      flagDaemonSchedule,
		Addr:          flagDaemonAddr,
		EventsBuffer:  flagDaemonEventsBuffer,
		Reports:       reports,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if err := pf.write(daemonInfo{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		Schedule:  flagDaemonSchedule,
		StartedAt: time.Now(),
		DataDir:   dataDir,
	}); err != nil {
		return err
	}
	defer pf.clear()

	log.WithFields(logrus.Fields{
		"addr":     flagDaemonAddr,
		"schedule": flagDaemonSchedule,
		"data_dir": dataDir,
		"pid_file": flagDaemonPIDFile,
	}).Info("daemon starting")

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openReportCache prefers Redis when an address is configured and reachable,
// otherwise keeps reports in process memory.
func openReportCache(ctx context.Context, cfg config.Config, log *logrus.Logger) reportcache.Cache {
	ttl := cfg.Daemon.ReportTTL.Duration
	addr := flagDaemonRedis
	if addr == "" {
		addr = config.GetRedisAddr(cfg)
	}
	if addr == "" {
		return reportcache.NewMemory(ttl, reportCacheEntries)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rc, err := reportcache.NewRedis(pingCtx, addr, ttl)
	if err != nil {
		log.WithError(err).WithField("redis", addr).Warn("redis unavailable, using in-memory report cache")
		return reportcache.NewMemory(ttl, reportCacheEntries)
	}
	return rc
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if !alive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if info, err := pf.info(); err == nil && info.Addr != "" {
		addr = info.Addr
	}
	if addr == "" {
		cfg, _ := config.Load()
		addr = cfg.Daemon.Addr
	}

	rows := [][]string{
		{"PID", fmt.Sprintf("%d", pid)},
		{"Address", "http://" + addr},
	}
	st, err := fetchDaemonStatus(addr)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
	} else {
		last := "pending"
		if !st.LastPollAt.IsZero() {
			last = st.LastPollAt.Local().Format(time.RFC3339)
		}
		rows = append(rows,
			[]string{"Last recompute", last},
			[]string{"Schedule", st.Schedule},
			[]string{"Recomputes", fmt.Sprintf("%d (%d from cache)", st.PollCount, st.CacheHits)},
			[]string{"Transactions", cli.FormatNumber(int64(st.Transactions))},
			[]string{"Insights", cli.FormatNumber(int64(st.Insights))},
			[]string{"Subscribers", cli.FormatNumber(int64(st.SubscriberCount))},
		)
		if st.LastError != "" {
			rows = append(rows, []string{"Last error", st.LastError})
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows}))
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status")
	if err != nil {
		return st, fmt.Errorf("unreachable (%v)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%v)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := terminate(ctx, pid); err != nil {
		return err
	}
	pf.clear()
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
