package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fmdrum/src/synth"

	"golang.org/x/sync/errgroup"
)

const sockFileName = "/tmp/fmdrum.sock"

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, err := synth.NewEngine()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer engine.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	go func() {
		midiCh := synth.ListenToMidiIn(ctx)
		for data := range midiCh {
			engine.AddMidiEvent(data)
		}
	}()
	err = withIPCConnection(ctx, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return engine.Start(ctx)
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, engine.CommandCh)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, engine)
		})
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		if err := listener.Close(); err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening...\n")
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			return err
		}
		commandCh <- command
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func sendReports(ctx context.Context, conn net.Conn, engine *synth.Engine) error {
	if names, err := engine.KitNames(); err != nil {
		log.Printf("failed to list kits: %v\n", err)
	} else {
		conn.Write([]byte("kits " + strings.Join(names, " ") + "\n"))
	}
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			if engine.Changes.Has("data") {
				engine.Changes.Delete("data")
				conn.Write([]byte("state " + engine.EncodeState() + "\n"))
			}
			levels := engine.Levels()
			s := "levels"
			for _, value := range levels {
				s += " " + strconv.FormatFloat(value, 'f', 4, 64)
			}
			s += "\nfft"
			for _, value := range engine.GetFFT() {
				s += " " + strconv.FormatFloat(value, 'f', 6, 64)
			}
			select {
			case <-ctx.Done():
				log.Println("sendReports() interrupted")
				break loop
			default:
				conn.Write([]byte(s + "\n"))
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
