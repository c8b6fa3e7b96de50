// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package redisserver is package for starting a redis test server
package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	fallbackAddr = "localhost:3780"
	fallbackPort = 3780
)

// Server is a running redis test server.
type Server struct {
	addr    string
	mini    *miniredis.Miniredis
	cleanup func()
	once    sync.Once
}

// Addr returns the address the server listens on.
func (server *Server) Addr() string { return server.addr }

// URL returns the redis:// url of database db.
func (server *Server) URL(db int) string {
	return "redis://" + server.addr + "?db=" + strconv.Itoa(db)
}

// Mini returns the miniredis instance, or nil when a real server is running.
func (server *Server) Mini() *miniredis.Miniredis { return server.mini }

// Close stops the server and removes its files. It is safe to call more than once.
func (server *Server) Close() error {
	server.once.Do(server.cleanup)
	return nil
}

func freeport() (addr string, port int) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fallbackAddr, fallbackPort
	}

	addr = listener.Addr().String()
	port = listener.Addr().(*net.TCPAddr).Port

	_ = listener.Close()
	return addr, port
}

// Start starts a redis-server when available, otherwise falls back to miniredis
func Start(ctx context.Context, log *zap.Logger) (*Server, error) {
	server, err := Process(ctx)
	if err != nil {
		log.Debug("failed to start redis-server, using miniredis", zap.Error(err))
		return Mini()
	}
	return server, nil
}

// Process starts a redis-server test process
func Process(ctx context.Context) (*Server, error) {
	if _, err := exec.LookPath("redis-server"); err != nil {
		return nil, err
	}

	tmpdir, err := os.MkdirTemp("", "filetao-redis")
	if err != nil {
		return nil, err
	}

	// find a suitable port for listening
	addr, port := freeport()

	// write a configuration file, because redis doesn't support flags
	confpath := filepath.Join(tmpdir, "test.conf")
	arguments := []string{
		"daemonize no",
		"bind 127.0.0.1",
		"port " + strconv.Itoa(port),
		"timeout 0",
		"databases 16",
		"appendonly yes",
		"dbfilename dump.rdb",
		"dir " + tmpdir,
	}
	conf := strings.Join(arguments, "\n") + "\n"
	err = os.WriteFile(confpath, []byte(conf), 0644)
	if err != nil {
		return nil, err
	}

	// start the process
	cmd := exec.Command("redis-server", confpath)
	redisout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = os.RemoveAll(tmpdir)
	}

	// wait for redis to become ready
	waitForReady := make(chan struct{})
	go func() {
		// wait for the message that looks like
		//   "Ready to accept connections"
		scanner := bufio.NewScanner(redisout)
		for scanner.Scan() {
			line := strings.ToLower(scanner.Text())
			if strings.Contains(line, "ready to accept") {
				break
			}
		}
		close(waitForReady)
		_, _ = io.Copy(io.Discard, redisout)
	}()

	select {
	case <-waitForReady:
	case <-time.After(3 * time.Second):
		cleanup()
		return nil, errors.New("redis timeout")
	}

	// test whether we can actually connect
	if !pingServer(ctx, addr) {
		cleanup()
		return nil, errors.New("unable to ping")
	}

	return &Server{addr: addr, cleanup: cleanup}, nil
}

func pingServer(ctx context.Context, addr string) bool {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	defer func() { _ = client.Close() }()
	return client.Ping(ctx).Err() == nil
}

// Mini starts miniredis server
func Mini() (*Server, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, err
	}

	return &Server{
		addr:    server.Addr(),
		mini:    server,
		cleanup: server.Close,
	}, nil
}
