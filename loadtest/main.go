package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

var (
	baseURL   = flag.String("url", "http://localhost:8080", "server base url")
	pairCount = flag.Int("pairs", 250, "number of chatting user pairs")
	msgCount  = flag.Int("messages", 20, "messages sent per user")
	interval  = flag.Duration("interval", 10*time.Millisecond, "pause between messages")
)

type stats struct {
	sent     atomic.Int64
	received atomic.Int64
	failed   atomic.Int64
}

type session struct {
	name  string
	token string
	id    int64
}

func main() {
	flag.Parse()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	log.Infow("starting chat load test", "users", *pairCount*2, "messages_per_user", *msgCount)
	start := time.Now()

	var (
		st stats
		wg sync.WaitGroup
	)
	// User 2n talks to user 2n+1.
	for i := 0; i < *pairCount; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			if err := runPair(pairID, &st); err != nil {
				st.failed.Add(1)
				log.Warnw("pair failed", "pair", pairID, "error", err)
			}
		}(i)
	}
	wg.Wait()

	log.Infow("load test complete",
		"duration", time.Since(start),
		"sent", st.sent.Load(),
		"received", st.received.Load(),
		"failed_pairs", st.failed.Load(),
	)
}

func runPair(pairID int, st *stats) error {
	run := xid.New().String()
	a, err := authenticate(fmt.Sprintf("lt_%s_%d_a", run, pairID))
	if err != nil {
		return err
	}
	b, err := authenticate(fmt.Sprintf("lt_%s_%d_b", run, pairID))
	if err != nil {
		return err
	}

	connA, err := dial(a)
	if err != nil {
		return err
	}
	defer connA.Close()
	connB, err := dial(b)
	if err != nil {
		return err
	}
	defer connB.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for _, side := range []struct {
		conn *websocket.Conn
		to   int64
	}{{connA, b.id}, {connB, a.id}} {
		side := side
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- receive(side.conn, *msgCount, st)
		}()
		go func() {
			defer wg.Done()
			errs <- spam(side.conn, side.to, st)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// authenticate registers a fresh user, logs in and resolves their id.
func authenticate(username string) (*session, error) {
	password := "password123"
	email := username + "@loadtest.local"

	resp, err := postJSON("/register", map[string]string{
		"email":    email,
		"username": username,
		"name":     "Load",
		"surname":  "Test",
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	resp.Body.Close()

	resp, err = postJSON("/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	var login struct {
		AuthToken string `json:"auth_token"`
	}
	err = json.NewDecoder(resp.Body).Decode(&login)
	resp.Body.Close()
	if err != nil || login.AuthToken == "" {
		return nil, fmt.Errorf("login %s: no token", username)
	}

	req, _ := http.NewRequest(http.MethodGet, *baseURL+"/my_id", nil)
	req.Header.Set("Authorization", "Bearer "+login.AuthToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("my_id %s: %w", username, err)
	}
	defer resp.Body.Close()
	var me struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil || me.ID == 0 {
		return nil, fmt.Errorf("my_id %s: bad response", username)
	}

	return &session{name: username, token: login.AuthToken, id: me.ID}, nil
}

func dial(s *session) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(*baseURL, "http") + "/chatsocket/" + strconv.FormatInt(s.id, 10) +
		"?token=" + url.QueryEscape(s.token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ws connect %s: %w", s.name, err)
	}
	return conn, nil
}

func spam(conn *websocket.Conn, to int64, st *stats) error {
	for i := 0; i < *msgCount; i++ {
		frame := map[string]string{
			"recipient_id": strconv.FormatInt(to, 10),
			"message":      fmt.Sprintf("load test message %d", i),
		}
		if err := conn.WriteJSON(frame); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		st.sent.Add(1)
		time.Sleep(*interval)
	}
	return nil
}

// receive reads until want chat frames arrived or the line goes quiet.
func receive(conn *websocket.Conn, want int, st *stats) error {
	for got := 0; got < want; {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("receive after %d frames: %w", got, err)
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			return errors.New("server rejected frame: " + string(data))
		}
		got++
		st.received.Add(1)
	}
	return nil
}

func postJSON(endpoint string, data interface{}) (*http.Response, error) {
	jsonData, _ := json.Marshal(data)
	return http.Post(*baseURL+endpoint, "application/json", bytes.NewBuffer(jsonData))
}
