package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"skycast/internal/forecaster"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// Publish pushes the ratings and window times of one collected forecast as
// individual topics, plus the full result as retained JSON for dashboards.
func (p *Publisher) Publish(result *forecaster.Result) error {
	if !p.enabled {
		return nil
	}

	topics := map[string]interface{}{
		"sunset_rating":         result.Ratings.SunsetRating,
		"sunrise_rating":        result.Ratings.SunriseRating,
		"astro_rating":          result.Ratings.AstroRating,
		"milky_way_rating":      result.Ratings.MilkyWayRating,
		"moon_interference":     result.Ratings.MoonInterference,
		"moon_illumination":     result.Moon.IlluminationOrZero(),
		"moon_phase":            result.Moon.PhaseName,
		"avg_total_cloud":       result.AvgTotalCloud,
		"avg_high_cloud":        result.AvgHighCloud,
		"astro_window_start":    result.Ratings.OptimalAstroWindow.StartTime,
		"astro_window_quality":  result.Ratings.OptimalAstroWindow.Quality,
		"rows_with_differences": result.DiffSummary.RowsWithDifferences,
	}

	if result.Window.Sunset != nil {
		topics["sunset_ts"] = result.Window.Sunset.TS
	}
	if result.Window.Sunrise != nil {
		topics["sunrise_ts"] = result.Window.Sunrise.TS
	}
	if result.Times != nil {
		topics["golden_hour_start"] = result.Times.GoldenHourStart
		topics["blue_hour_start"] = result.Times.BlueHourStart
		topics["milky_way_core_rise"] = result.Times.MilkyWayCoreRise
	}

	for name, value := range topics {
		topic := fmt.Sprintf("%s/forecast/%s", p.topicPrefix, name)
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	resultTopic := fmt.Sprintf("%s/forecast/json", p.topicPrefix)
	token := p.client.Publish(resultTopic, 0, true, resultJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish result: %w", token.Error())
	}

	return nil
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
