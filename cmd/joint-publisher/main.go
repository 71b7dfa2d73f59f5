package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/robocloud/internal/jointpub"
	"github.com/okian/robocloud/pkg/logger"
)

func main() {
	var (
		baseURL   = flag.String("url", jointpub.DefaultBaseURL, "Base URL of the service")
		udpAddr   = flag.String("udp", "", "Send UDP datagrams to this address instead of HTTP")
		topic     = flag.String("topic", jointpub.DefaultTopic, "Joint-state topic")
		joints    = flag.String("joints", "", "Comma separated joint names")
		urdfFile  = flag.String("urdf", "", "URDF file whose active joints are driven")
		rate      = flag.Float64("rate", jointpub.DefaultRate, "Messages per second")
		count     = flag.Int("count", 0, "Number of messages to send (0 = unbounded)")
		duration  = flag.Duration("duration", 0, "Stop after this long (0 = unbounded)")
		amplitude = flag.Float64("amplitude", jointpub.DefaultAmplitude, "Sine amplitude")
		frequency = flag.Float64("frequency", jointpub.DefaultFrequency, "Sine frequency in Hz")
		timeout   = flag.Duration("timeout", jointpub.DefaultTimeout, "HTTP request timeout")
		logFormat = flag.String("log-format", logger.FormatText, "Log format: text, json or pretty")
		verbose   = flag.Bool("verbose", false, "Log every message")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		jointpub.ShowHelp()
		return
	}

	if err := logger.InitWithFormat(*logFormat, os.Stdout); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := &jointpub.Config{
		BaseURL:   strings.TrimRight(*baseURL, "/"),
		UDPAddr:   *udpAddr,
		Topic:     *topic,
		Joints:    splitNames(*joints),
		URDFFile:  *urdfFile,
		Rate:      *rate,
		Count:     *count,
		Duration:  *duration,
		Amplitude: *amplitude,
		Frequency: *frequency,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}

	stats, err := jointpub.Run(ctx, config)
	if err != nil {
		logger.Get().Fatal(ctx, "joint publisher failed", logger.Error(err))
	}
	jointpub.LogStats(ctx, stats)
}

func splitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
