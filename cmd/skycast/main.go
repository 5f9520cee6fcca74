package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skycast/config"
	"skycast/internal/api"
	"skycast/internal/cache"
	"skycast/internal/collector"
	"skycast/internal/forecaster"
	"skycast/internal/mqtt"
	"skycast/internal/provider"
	"skycast/internal/storage"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skycast",
		Short: "Cloud-cover and astro forecast for photographers",
		Long:  "Fetches hourly cloud cover from two providers, merges them conservatively, and rates sunset, sunrise, and astrophotography conditions",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildForecaster wires the providers and cache from config.
func buildForecaster(cfg *config.Config, withCache bool) *forecaster.Forecaster {
	fcfg := forecaster.Config{
		Primary:       provider.NewOpenMeteoClient(cfg.Location.Latitude, cfg.Location.Longitude),
		Moon:          provider.NewMoonClient(cfg.Astronomy.APIKey, cfg.Location.Latitude, cfg.Location.Longitude),
		DiffThreshold: cfg.Forecast.DiffThreshold,
		DefaultHours:  cfg.Forecast.Hours,
	}
	if cfg.Forecast.SecondaryEnabled {
		fcfg.Secondary = provider.NewMetNoClient(cfg.Location.Latitude, cfg.Location.Longitude, cfg.Forecast.UserAgent)
	}
	if withCache && cfg.Forecast.CacheTTL > 0 {
		fcfg.Cache = cache.New[*forecaster.Result](128, cfg.Forecast.CacheTTL)
	}
	return forecaster.New(fcfg)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the forecast service",
		Long:  "Start the collector, API server, and MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fc := buildForecaster(cfg, true)

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			log.Printf("Database opened at %s", cfg.Database.Path)

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
			}

			coll := collector.NewCollector(collector.CollectorConfig{
				Forecaster: fc,
				Database:   db,
				Publisher:  publisher,
				Interval:   cfg.Collector.Interval,
				Enabled:    cfg.Collector.Enabled,
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				if err := coll.Start(ctx); err != nil {
					log.Printf("Collector error: %v", err)
				}
			}()

			if cfg.API.Enabled {
				server := api.NewServer(api.ServerConfig{
					Port:       cfg.API.Port,
					Collector:  coll,
					Forecaster: fc,
					Database:   db,
					Config:     cfg,
					ConfigPath: configFile,
				})

				go func() {
					if err := server.Start(); err != nil {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Println("skycast started. Press Ctrl+C to stop.")

			<-sigChan
			log.Println("Shutting down...")
			cancel()
			coll.Stop()

			return nil
		},
	}
}

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Run one forecast lookup and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			hours, _ := cmd.Flags().GetInt("hours")
			asJSON, _ := cmd.Flags().GetBool("json")

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			result, err := buildForecaster(cfg, false).Lookup(ctx, hours)
			if err != nil {
				return fmt.Errorf("forecast failed: %w", err)
			}

			if asJSON {
				output, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			printForecast(cfg, result)
			return nil
		},
	}

	cmd.Flags().Int("hours", 0, "forecast hours (1-168, 0 = configured default)")
	cmd.Flags().Bool("json", false, "print the full result as JSON")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to the forecast providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			fmt.Printf("Testing providers for %.4f, %.4f...\n\n", cfg.Location.Latitude, cfg.Location.Longitude)

			primary := provider.NewOpenMeteoClient(cfg.Location.Latitude, cfg.Location.Longitude)
			if sky, err := primary.Forecast(ctx, 24); err != nil {
				color.Red("✗ Open-Meteo (primary): %v", err)
			} else {
				color.Green("✓ Open-Meteo (primary): %d hourly rows, %d sunsets, timezone %s",
					len(sky.Hourly), len(sky.Sunsets), sky.Timezone)
			}

			secondary := provider.NewMetNoClient(cfg.Location.Latitude, cfg.Location.Longitude, cfg.Forecast.UserAgent)
			if byHour, err := secondary.CloudByHour(ctx); err != nil {
				color.Red("✗ MET Norway (secondary): %v", err)
			} else {
				color.Green("✓ MET Norway (secondary): %d hour buckets", len(byHour))
			}

			moon := provider.NewMoonClient(cfg.Astronomy.APIKey, cfg.Location.Latitude, cfg.Location.Longitude)
			info := moon.Moon(ctx)
			if info.Illumination == nil {
				color.Yellow("- Astronomy (moon): unavailable (missing key or provider failure); ratings assume a dark sky")
			} else {
				color.Green("✓ Astronomy (moon): %s, %d%% illuminated", info.PhaseName, *info.Illumination)
			}

			return nil
		},
	}
}

func printForecast(cfg *config.Config, result *forecaster.Result) {
	bold := color.New(color.Bold)

	name := cfg.Location.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", result.Latitude, result.Longitude)
	}
	bold.Printf("Sky forecast for %s (%s)\n", name, result.Timezone)
	fmt.Println(strings.Repeat("=", 48))

	if result.Window.Sunset != nil {
		fmt.Printf("Sunset:  %s\n", localClock(result.Window.Sunset.TS, result.Timezone))
	}
	if result.Window.Sunrise != nil {
		fmt.Printf("Sunrise: %s\n", localClock(result.Window.Sunrise.TS, result.Timezone))
	}

	if t := result.Times; t != nil {
		fmt.Printf("Golden hour:  %s  Blue hour: %s-%s\n",
			localClock(t.GoldenHourStart, result.Timezone),
			localClock(t.BlueHourStart, result.Timezone),
			localClock(t.BlueHourEnd, result.Timezone))
		fmt.Printf("Astro dark after %s, Milky Way core rises %s\n",
			localClock(t.AstronomicalTwilightEnd, result.Timezone),
			localClock(t.MilkyWayCoreRise, result.Timezone))
	}

	fmt.Println()
	printRating("Sunset", result.Ratings.SunsetRating)
	printRating("Sunrise", result.Ratings.SunriseRating)
	printRating("Astro", result.Ratings.AstroRating)
	printRating("Milky Way", result.Ratings.MilkyWayRating)

	w := result.Ratings.OptimalAstroWindow
	fmt.Printf("\nOptimal astro window: %s-%s (%.1fh, %s)\n",
		w.StartTime, w.EndTime, w.DurationHours, w.Quality)
	fmt.Printf("Moon: %s", result.Moon.PhaseName)
	if result.Moon.Illumination != nil {
		fmt.Printf(", %d%% illuminated", *result.Moon.Illumination)
	}
	fmt.Printf(" (%s interference)\n", result.Ratings.MoonInterference)

	fmt.Printf("Night cloud: %.0f%% total, %.0f%% high\n", result.AvgTotalCloud, result.AvgHighCloud)
	if result.SecondaryUsed {
		fmt.Printf("Providers disagreed on %d of %d hours (threshold %d%%)\n",
			result.DiffSummary.RowsWithDifferences, len(result.Hourly), result.DiffSummary.Threshold)
	} else {
		color.Yellow("Secondary provider unavailable; showing primary data only")
	}
}

func printRating(name string, rating int) {
	stars := strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	paint := color.New(color.FgRed)
	switch {
	case rating >= 4:
		paint = color.New(color.FgGreen)
	case rating == 3:
		paint = color.New(color.FgYellow)
	}
	fmt.Printf("%-10s ", name+":")
	paint.Println(stars)
}

func localClock(ts int64, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format("Mon 15:04")
}
