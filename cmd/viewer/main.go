// viewer prints the room's current state over the HTTP API: health
// figures, today's topic and today's messages as a table. It is meant for
// operators poking at a running server, not for end users.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"daily-chat/domain"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	ServerURL string        `envconfig:"CHAT_API_URL" default:"http://localhost:8080"`
	Timeout   time.Duration `envconfig:"CHAT_API_TIMEOUT" default:"5s"`
}

type healthPayload struct {
	Status           string `json:"status"`
	MessageCount     int    `json:"message_count"`
	ConnectedClients int    `json:"connected_clients"`
	Date             string `json:"date"`
}

type todayPayload struct {
	Date  string `json:"date"`
	Topic string `json:"topic"`
	Rules string `json:"rules"`
}

type messagesPayload struct {
	Messages []domain.OutboundFrame `json:"messages"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var health healthPayload
	if err := fetch(client, cfg.ServerURL+"/health", &health); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	var today todayPayload
	if err := fetch(client, cfg.ServerURL+"/api/today", &today); err != nil {
		log.Fatalf("Topic fetch failed: %v", err)
	}
	var history messagesPayload
	if err := fetch(client, cfg.ServerURL+"/api/messages", &history); err != nil {
		log.Fatalf("Message fetch failed: %v", err)
	}

	color.Green.Printf("Server %s on %s\n", health.Status, health.Date)
	fmt.Printf("Messages today: %d | Connected clients: %d\n", health.MessageCount, health.ConnectedClients)
	color.Bold.Printf("Topic: %s\n", today.Topic)
	if today.Rules != "" {
		fmt.Printf("Rules: %s\n", today.Rules)
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "User", "Text"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, frame := range history.Messages {
		table.Append([]string{shortTime(frame.Timestamp), frame.User, frame.Text})
	}
	table.Render()
}

func fetch(client *http.Client, url string, target any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func shortTime(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return t.Local().Format("15:04:05")
}
