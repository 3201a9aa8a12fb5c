package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weather-panel/internal/model"
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

// Publish pushes the committed snapshot: one topic per value plus a
// retained JSON status document.
func (p *Publisher) Publish(current model.CurrentConditions, forecast []model.ForecastEntry, lastUpdate time.Time) error {
	if !p.enabled {
		return nil
	}

	topics := map[string]interface{}{
		"condition_id":   current.ConditionID,
		"condition":      current.ConditionText,
		"condition_time": current.ConditionTime,
		"temperature":    current.Temp,
		"humidity":       current.Humidity,
		"wind_speed":     current.WindSpeed,
		"wind_deg":       current.WindDeg,
		"hourly_precip":  current.HourlyPrecip,
		"last_update":    lastUpdate.Unix(),
	}

	for name, value := range topics {
		topic := fmt.Sprintf("%s/current/%s", p.topicPrefix, name)
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	status := struct {
		Current    model.CurrentConditions `json:"current"`
		Forecast   []model.ForecastEntry   `json:"forecast"`
		LastUpdate int64                   `json:"last_update"`
	}{current, forecast, lastUpdate.Unix()}

	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	statusTopic := fmt.Sprintf("%s/status", p.topicPrefix)
	token := p.client.Publish(statusTopic, 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish status: %w", token.Error())
	}

	return nil
}

// PublishHomeAssistantDiscovery announces the weather sensors so Home
// Assistant picks them up without manual configuration.
func (p *Publisher) PublishHomeAssistantDiscovery() error {
	if !p.enabled {
		return nil
	}

	sensors := []struct {
		Name        string
		ID          string
		Unit        string
		DeviceClass string
	}{
		{"Temperature", "temperature", "°C", "temperature"},
		{"Humidity", "humidity", "%", "humidity"},
		{"Wind Speed", "wind_speed", "m/s", "wind_speed"},
		{"Hourly Precipitation", "hourly_precip", "mm", "precipitation"},
		{"Condition", "condition", "", ""},
	}

	for _, sensor := range sensors {
		discoveryTopic := fmt.Sprintf("homeassistant/sensor/weather_panel/%s/config", sensor.ID)

		config := map[string]interface{}{
			"name":        fmt.Sprintf("Weather Panel %s", sensor.Name),
			"unique_id":   fmt.Sprintf("weather_panel_%s", sensor.ID),
			"state_topic": fmt.Sprintf("%s/current/%s", p.topicPrefix, sensor.ID),
			"device": map[string]interface{}{
				"identifiers":  []string{"weather_panel"},
				"name":         "Weather Panel",
				"manufacturer": "weather-panel",
			},
		}
		if sensor.Unit != "" {
			config["unit_of_measurement"] = sensor.Unit
		}
		if sensor.DeviceClass != "" {
			config["device_class"] = sensor.DeviceClass
		}

		payload, _ := json.Marshal(config)
		token := p.client.Publish(discoveryTopic, 0, true, payload)
		token.Wait()
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
