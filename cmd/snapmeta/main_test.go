// ABOUTME: Tests for the snapmeta command tree
// ABOUTME: Covers listen parsing, command wiring, and watch against a loopback server
package main

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSplitListen(t *testing.T) {
	tests := []struct {
		in      string
		host    string
		port    int
		wantErr bool
	}{
		{in: "127.0.0.1:8780", host: "127.0.0.1", port: 8780},
		{in: ":9000", host: "", port: 9000},
		{in: "nohost", wantErr: true},
		{in: "h:99999", wantErr: true},
	}
	for _, tt := range tests {
		host, port, err := splitListen(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || host != tt.host || port != tt.port {
			t.Errorf("%q: got (%q, %d, %v)", tt.in, host, port, err)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "watch"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}

func TestWatchCmd_RequiresHost(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"watch"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without HOST")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch_PrintsNotifications(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte(`{"jsonrpc":"2.0","method":"Stream.OnUpdate","params":{"stream":{"status":"playing","properties":{"metadata":{"artist":["Artist"],"title":"Song"}}}}}`))
		// Hold the socket open until the client hangs up.
		buf := make([]byte, 1)
		conn.Read(buf)
	}()

	_, p, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(p)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, "127.0.0.1", &watchOptions{
			port:        port,
			framing:     "chunk",
			format:      "{artist} - {title}",
			dialTimeout: time.Second,
			logLevel:    "off",
		}, out)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), "playing") {
		if time.Now().After(deadline) {
			t.Fatalf("timed out, output: %q", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("runWatch did not return after cancel")
	}

	got := out.String()
	if !strings.Contains(got, "Artist - Song") {
		t.Errorf("expected title in output, got %q", got)
	}
	if strings.Index(got, "Artist - Song") > strings.Index(got, "playing") {
		t.Errorf("expected title before status, got %q", got)
	}
}

func TestRunWatch_ServerHangsUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	_, p, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(p)

	err = runWatch(context.Background(), "127.0.0.1", &watchOptions{
		port:        port,
		dialTimeout: time.Second,
		logLevel:    "off",
	}, &syncBuffer{})
	if err == nil || !strings.Contains(err.Error(), "closed the connection") {
		t.Fatalf("expected hang-up error, got %v", err)
	}
}

func TestRunWatch_BadFraming(t *testing.T) {
	err := runWatch(context.Background(), "127.0.0.1", &watchOptions{framing: "lines"}, &syncBuffer{})
	if err == nil {
		t.Fatal("expected error for unknown framing")
	}
}
