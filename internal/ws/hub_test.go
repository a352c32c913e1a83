package ws

import (
	"log/slog"
	"testing"
	"time"
)

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 1)}
	c2 := &Client{Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)

	msg := []byte(`{"tipo":"realocacao"}`)
	h.Broadcast(msg)

	for i, c := range []*Client{c1, c2} {
		select {
		case got := <-c.Send:
			if string(got) != string(msg) {
				t.Fatalf("cliente %d recebeu %q", i, got)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timeout esperando cliente %d", i)
		}
	}
}

func TestHub_UnregisterFechaSend(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("esperava canal fechado")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout esperando fechamento do canal")
	}
}
