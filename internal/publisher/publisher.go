// Package publisher announces saved quotes to MQTT and Home Assistant.
package publisher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/jgoulah/gridsizer/internal/config"
	"github.com/jgoulah/gridsizer/pkg/models"
)

// ErrNoTargets is returned when neither MQTT nor Home Assistant is enabled
var ErrNoTargets = errors.New("no publish targets enabled in config")

// Publisher handles publishing quotes to MQTT and the Home Assistant event bus
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	eventType   string
	httpClient  *http.Client
	logger      *zap.Logger
}

// New creates a new publisher from the mqtt and home_assistant config sections
func New(cfg *config.Config, logger *zap.Logger) (*Publisher, error) {
	haCfg := cfg.HomeAssistant
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
	}

	p := &Publisher{
		topicPrefix: cfg.GetTopicPrefix(),
		haConfig:    haCfg,
		eventType:   cfg.GetEventType(),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}

	mqttCfg := cfg.MQTT
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		clientID := mqttCfg.ClientID
		if clientID == "" {
			clientID = "gridsizer"
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID(clientID)
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		p.client = mqtt.NewClient(opts)
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
		logger.Info("connected to MQTT broker", zap.String("broker", mqttCfg.Broker))
	}

	return p, nil
}

// Enabled reports whether any publish target is configured
func (p *Publisher) Enabled() bool {
	return p.client != nil || p.haConfig.Enabled
}

// QuoteEvent is the payload announced for a saved quote
type QuoteEvent struct {
	ID           string  `json:"id"`
	CreatedAt    string  `json:"created_at"`
	PropertyType string  `json:"property_type"`
	Objective    string  `json:"energy_objective"`
	InverterKVA  float64 `json:"inverter_kva"`
	BatteryKWh   float64 `json:"battery_kwh"`
	SolarKW      float64 `json:"solar_kw"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `json:"currency"`
	Summary      string  `json:"summary"`
}

// NewQuoteEvent builds the announcement for q
func NewQuoteEvent(q models.Quote) QuoteEvent {
	return QuoteEvent{
		ID:           q.ID,
		CreatedAt:    q.CreatedAt.UTC().Format(time.RFC3339),
		PropertyType: q.PropertyType,
		Objective:    q.Objective,
		InverterKVA:  q.InverterKVA,
		BatteryKWh:   q.BatteryKWh,
		SolarKW:      q.SolarKW,
		TotalPrice:   q.TotalPrice,
		Currency:     q.Currency,
		Summary: fmt.Sprintf("%s kVA inverter, %s kWh battery, %s kW solar for %s %s",
			humanize.Ftoa(q.InverterKVA), humanize.Ftoa(q.BatteryKWh), humanize.Ftoa(q.SolarKW),
			q.Currency, humanize.Commaf(q.TotalPrice)),
	}
}

// PublishQuote announces q on every enabled target. A failure on one target
// does not skip the others.
func (p *Publisher) PublishQuote(q models.Quote) error {
	if !p.Enabled() {
		return ErrNoTargets
	}

	body, err := json.Marshal(NewQuoteEvent(q))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	var errs []error
	if p.client != nil {
		if err := p.publishMQTT(q.ID, body); err != nil {
			errs = append(errs, err)
		}
	}
	if p.haConfig.Enabled {
		if err := p.fireEvent(body); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.logger.Debug("quote published", zap.String("id", q.ID))
	return nil
}

// publishMQTT sends a retained message so late subscribers see the latest quote
func (p *Publisher) publishMQTT(id string, body []byte) error {
	topic := fmt.Sprintf("%s/quotes/%s", p.topicPrefix, id)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// fireEvent posts to the Home Assistant event bus
func (p *Publisher) fireEvent(body []byte) error {
	apiURL := fmt.Sprintf("%s/api/events/%s", strings.TrimRight(p.haConfig.URL, "/"), p.eventType)

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
