package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"weather-panel/config"
	"weather-panel/internal/api"
	"weather-panel/internal/display"
	"weather-panel/internal/fetcher"
	"weather-panel/internal/format"
	"weather-panel/internal/icons"
	"weather-panel/internal/model"
	"weather-panel/internal/mqtt"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weather-panel",
		Short: "Weather panel daemon",
		Long:  "Polls a weather API and serves current conditions, forecast, and condition icons",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(printCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type components struct {
	cfg       *config.Config
	fetcher   *fetcher.Fetcher
	icons     *icons.Resolver
	formatter *format.Formatter
}

// setup loads the configuration and builds the core components. Any error
// here is a startup configuration failure and terminates the process.
func setup() (*components, error) {
	// Local .env overrides for the API key and friends.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	formatter, err := format.New(cfg.Location.Units, cfg.Location.DateFormat, cfg.Location.TimeFormat)
	if err != nil {
		return nil, err
	}

	resolver, err := icons.NewResolver(icons.Config{
		ImageDir:    cfg.Icons.ImageDir,
		MappingFile: cfg.Icons.MappingFile,
		ImageSet:    cfg.Icons.ImageSet,
		ImageColor:  cfg.Icons.ImageColor,
		SVGDir:      cfg.Icons.SVGDir,
	})
	if err != nil {
		return nil, err
	}

	f := fetcher.NewFetcher(fetcher.FetcherConfig{
		WeatherURL: fetcher.ExpandURL(cfg.Weather.WeatherURL,
			cfg.Location.Latitude, cfg.Location.Longitude, cfg.Weather.Key, cfg.Location.Units),
		ForecastURL: fetcher.ExpandURL(cfg.Weather.ForecastURL,
			cfg.Location.Latitude, cfg.Location.Longitude, cfg.Weather.Key, cfg.Location.Units),
		ProbeURL:     cfg.Weather.ProbeURL,
		PollInterval: cfg.Weather.PollInterval,
		Timeout:      cfg.Weather.Timeout,
	})

	return &components{cfg: cfg, fetcher: f, icons: resolver, formatter: formatter}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the weather panel service",
		Long:  "Start the refresh loop, and the API server and MQTT publisher if enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := setup()
			if err != nil {
				return err
			}
			cfg := comp.cfg

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: MQTT connection failed: %v\n", err)
			} else if cfg.MQTT.Enabled {
				publisher.PublishHomeAssistantDiscovery()
			}

			console := display.NewConsole(comp.fetcher, comp.icons, comp.formatter,
				cfg.Display.Forecasts, os.Stdout)

			// The publisher reconnects on its own; keep the hook installed
			// and let Publish no-op while the broker is away.
			var onUpdate display.UpdateHook
			if publisher != nil && cfg.MQTT.Enabled {
				onUpdate = func(current model.CurrentConditions, forecast []model.ForecastEntry, lastUpdate time.Time) {
					if err := publisher.Publish(current, forecast, lastUpdate); err != nil {
						fmt.Fprintf(os.Stderr, "Error publishing to MQTT: %v\n", err)
					}
				}
			}
			loop := display.NewLoop(comp.fetcher, console, cfg.Display.Refresh, onUpdate)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go loop.Run(ctx)

			if cfg.API.Enabled {
				server := api.NewServer(api.ServerConfig{
					Port:      cfg.API.Port,
					Fetcher:   comp.fetcher,
					Icons:     comp.icons,
					Formatter: comp.formatter,
				})

				go func() {
					if err := server.Start(); err != nil {
						fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
					}
				}()
			}

			fmt.Println("Weather Panel started. Press Ctrl+C to stop.")

			<-sigChan
			fmt.Println("Shutting down...")
			cancel()
			if publisher != nil {
				publisher.Close()
			}

			return nil
		},
	}
}

func printCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Fetch once and print the weather to the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			comp.fetcher.UpdateData(ctx)
			console := display.NewConsole(comp.fetcher, comp.icons, comp.formatter,
				comp.cfg.Display.Forecasts, os.Stdout)
			console.Print()

			return nil
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity and the weather API",
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := setup()
			if err != nil {
				return err
			}

			fmt.Println("Testing weather API...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			comp.fetcher.UpdateData(ctx)

			if !comp.fetcher.InternetActive() {
				fmt.Println("Internet: DOWN")
				return fmt.Errorf("reachability probe failed")
			}
			fmt.Println("Internet: OK")

			weather, ok := comp.fetcher.Current()
			if !ok {
				return fmt.Errorf("weather fetch failed")
			}

			fmt.Println("Fetch SUCCESS!")
			fmt.Printf("\nCurrent Conditions:\n")
			fmt.Printf("  Condition:   %s (%d, %s)\n", weather.ConditionText, weather.ConditionID, weather.ConditionTime)
			fmt.Printf("  Temperature: %s\n", comp.formatter.Temp(weather.Temp))
			fmt.Printf("  Humidity:    %s\n", comp.formatter.Percentage(float64(weather.Humidity)))
			fmt.Printf("  Wind:        %s\n", comp.formatter.WindSpeed(weather.WindSpeed, weather.WindDeg))
			fmt.Printf("  Precip:      %s\n", comp.formatter.Precip(weather.HourlyPrecip))
			fmt.Printf("  Icon:        %s\n", comp.icons.Resolve(weather.ConditionID, weather.ConditionTime))
			fmt.Printf("  Forecast entries: %d\n", len(comp.fetcher.Forecast()))

			return nil
		},
	}
}
