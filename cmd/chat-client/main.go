// chat-client is a terminal client for the daily chat room. It connects
// to the server's WebSocket endpoint, prints the replayed history and the
// live stream, and sends every stdin line as a message.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"daily-chat/domain"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:8080/ws"`
	User      string `envconfig:"CHAT_USER" default:"Anonymous"`
	// CHAT_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if !cfg.Colours {
		color.Disable()
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.ServerURL, nil)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer conn.Close()
	color.Green.Printf("Connected to %s as %s\n", cfg.ServerURL, cfg.User)

	done := make(chan struct{})
	go receive(conn, cfg.User, done)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	lines := readLines()

	for {
		select {
		case <-done:
			color.Yellow.Println("Server closed the connection")
			return
		case <-interrupt:
			// Polite close so the server frees the slot immediately.
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if text == "" {
				continue
			}
			frame := domain.InboundFrame{User: cfg.User, Text: text}
			data, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				color.Red.Printf("Send failed: %v\n", err)
				return
			}
		}
	}
}

// receive prints every inbound frame until the connection drops.
func receive(conn *websocket.Conn, self string, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame domain.OutboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		printFrame(frame, self)
	}
}

func printFrame(frame domain.OutboundFrame, self string) {
	at := frame.Timestamp
	if t, err := time.Parse(time.RFC3339, frame.Timestamp); err == nil {
		at = t.Local().Format("15:04:05")
	}
	line := fmt.Sprintf("[%s] %s: %s", at, frame.User, frame.Text)

	switch frame.User {
	case domain.SystemUser:
		color.Yellow.Println(line)
	case self:
		color.Cyan.Println(line)
	default:
		fmt.Println(line)
	}
}

// readLines forwards stdin lines to a channel so the main loop can also
// watch for interrupts and server shutdown.
func readLines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
