package statusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/quietshelf/fluidctl/internal/synth"
	"github.com/quietshelf/fluidctl/internal/testutil/testlog"
)

// slowTransactor answers from a canned table and trips if two transactions
// ever overlap, which would violate the engine's single-flight contract.
type slowTransactor struct {
	mu       sync.Mutex
	replies  map[string]string
	posted   []string
	inflight atomic.Int32
	overlap  atomic.Bool
}

func (f *slowTransactor) Post(cmd string) error {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.posted = append(f.posted, cmd)
	f.mu.Unlock()
	return nil
}

func (f *slowTransactor) Transact(cmd string) (string, error) {
	f.enter()
	defer f.leave()
	time.Sleep(5 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replies[cmd], nil
}

func (f *slowTransactor) enter() {
	if f.inflight.Add(1) > 1 {
		f.overlap.Store(true)
	}
}

func (f *slowTransactor) leave() { f.inflight.Add(-1) }

func newTestServer(t *testing.T, replies map[string]string) (*httptest.Server, *slowTransactor, *synth.Client) {
	t.Helper()
	testlog.Start(t)
	tx := &slowTransactor{replies: replies}
	client := synth.New(tx, synth.NewState())
	srv := httptest.NewServer(New(client, "localhost:9800").Router())
	t.Cleanup(srv.Close)
	return srv, tx, client
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, client := newTestServer(t, nil)
	client.State().Fonts[3] = "/tmp/a.sf2"
	client.State().ChannelFonts[0] = 3

	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.EngineAddr != "localhost:9800" {
		t.Fatalf("engine addr: %q", body.EngineAddr)
	}
	if body.State.Fonts[3] != "/tmp/a.sf2" {
		t.Fatalf("snapshot fonts: %v", body.State.Fonts)
	}
	if len(body.State.ChannelFonts) != synth.ChannelCount {
		t.Fatalf("snapshot channels: %d", len(body.State.ChannelFonts))
	}
}

func TestFontsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, map[string]string{
		"fonts": "ID  Name\n 1  /home/user/sf2/Choir.sf2\n 2  /home/user/sf2/Brass.sf2\n",
	})
	resp, err := http.Get(srv.URL + "/api/v1/fonts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string][]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body["fonts"]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("fonts: %v", got)
	}
}

func TestCommandEndpointSerializesCallers(t *testing.T) {
	srv, tx, _ := newTestServer(t, map[string]string{"help": "commands:"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := bytes.NewBufferString(`{"cmd":"help"}`)
			resp, err := http.Post(srv.URL+"/api/v1/command", "application/json", body)
			if err != nil {
				t.Errorf("post: %v", err)
				return
			}
			defer resp.Body.Close()
			var out commandResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Errorf("decode: %v", err)
				return
			}
			if out.Response != "commands:" {
				t.Errorf("response: %q", out.Response)
			}
		}()
	}
	wg.Wait()
	if tx.overlap.Load() {
		t.Fatalf("transactions overlapped on the engine connection")
	}
}

func TestCommandEndpointRejectsEmpty(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp, err := http.Post(srv.URL+"/api/v1/command", "application/json", bytes.NewBufferString(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestInitFontEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, map[string]string{
		fmt.Sprintf("load %q", "/tmp/brass.sf2"): "loaded SoundFont has ID 2\n",
		"inst 2":                                 "000-000 FF Brass 1\n000-001 Trumpets\n",
	})
	body := bytes.NewBufferString(`{"path":"/tmp/brass.sf2"}`)
	resp, err := http.Post(srv.URL+"/api/v1/fonts", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		ID          int      `json:"id"`
		Instruments []string `json:"instruments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != 2 || len(out.Instruments) != 2 {
		t.Fatalf("init result: %+v", out)
	}
}

func TestSelectEndpointReportsClientErrors(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	body := bytes.NewBufferString(`{"descriptor":"000-000 Piano"}`)
	resp, err := http.Post(srv.URL+"/api/v1/select", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	// No font loaded yet, so selection must fail.
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestWebsocketCommandEnvelope(t *testing.T) {
	srv, _, client := newTestServer(t, map[string]string{"help": "commands:"})
	client.State().Fonts[1] = "/tmp/a.sf2"
	client.State().ActiveFont = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + srv.URL[len("http"):] + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"cmd":"help"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp wsResponse
	if err := json.Unmarshal(msg, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Response != "commands:" {
		t.Fatalf("response: %q", resp.Response)
	}
	if resp.State == nil || resp.State.State.Fonts[1] != "/tmp/a.sf2" {
		t.Fatalf("state push missing: %+v", resp.State)
	}

	// Selection over the stream updates the channel table.
	if err := conn.Write(ctx, websocket.MessageText,
		[]byte(`{"descriptor":"000-005 Organ","channel":4}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, msg, err = conn.Read(ctx); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(msg, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error != "" {
		t.Fatalf("select error: %q", resp.Error)
	}
	if resp.State.State.ChannelInstruments[3] != "000-005 Organ" {
		t.Fatalf("channel table not updated: %v", resp.State.State.ChannelInstruments)
	}
}

func TestWebsocketRejectsOutOfRangeChannel(t *testing.T) {
	srv, _, client := newTestServer(t, nil)
	client.State().Fonts[1] = "/tmp/a.sf2"
	client.State().ActiveFont = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + srv.URL[len("http"):] + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	var resp wsResponse
	for _, payload := range []string{
		`{"channel":42}`,
		`{"descriptor":"000-005 Organ","channel":-3}`,
	} {
		if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
			t.Fatalf("write %s: %v", payload, err)
		}
		_, msg, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := json.Unmarshal(msg, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error == "" {
			t.Fatalf("envelope %s accepted without error", payload)
		}
	}
	// The rejected envelopes must not have moved the cursor or selected.
	if resp.State.State.SelectedChannel != 1 {
		t.Fatalf("cursor moved by rejected envelope: %d", resp.State.State.SelectedChannel)
	}
	if resp.State.State.ChannelInstruments[0] != "" {
		t.Fatalf("selection applied despite rejection: %v", resp.State.State.ChannelInstruments)
	}
}
