package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"time"

	"udp2amqp/pkg/logger"
)

var (
	count  = flag.Uint64("n", 0, "发送消息数量（0 表示不限）")
	waitMS = flag.Uint("w", 10, "两条消息之间的间隔（毫秒）")
	debug  = flag.Bool("d", false, "输出每条消息内容")
)

// event 测试消息体
type event struct {
	EventTime string `json:"event_time"`
	Index     uint64 `json:"index"`
}

// parseUDPURL 解析 udp://host:port
func parseUDPURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "udp" {
		return "", fmt.Errorf("unsupported scheme `%s`, expected udp://host:port", u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return "", fmt.Errorf("address `%s` must contain host and port", raw)
	}
	return u.Host, nil
}

func encodeEvent(now time.Time, index uint64) ([]byte, error) {
	return json.Marshal(event{
		EventTime: now.UTC().Format("2006-01-02T15:04:05.000000"),
		Index:     index,
	})
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] udp://host:port\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := "info"
	if *debug {
		level = "debug"
	}
	zapLogger, err := logger.NewZapLogger(level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	lg := zapLogger.Named("producer")
	ctx := context.Background()

	// 1. 解析目标地址
	addr, err := parseUDPURL(flag.Arg(0))
	if err != nil {
		log.Fatalf("Invalid address: %v", err)
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		log.Fatalf("Failed to open udp socket: %v", err)
	}
	defer conn.Close()

	// 2. 循环发送
	lg.Infof(ctx, "sending data to `%s`", flag.Arg(0))
	interval := time.Duration(*waitMS) * time.Millisecond
	for i := uint64(0); *count == 0 || i < *count; i++ {
		data, err := encodeEvent(time.Now(), i)
		if err != nil {
			log.Fatalf("Failed to encode event: %v", err)
		}
		lg.Debugf(ctx, "sending data: %s", data)
		if _, err := conn.Write(data); err != nil {
			lg.Errorf(ctx, "send failed: %v", err)
		}
		time.Sleep(interval)
	}
}
