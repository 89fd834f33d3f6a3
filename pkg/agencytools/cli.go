package agencytools

import (
	"errors"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/redis_client"
	"github.com/travigo/translink-train/pkg/resolvecache"
	"github.com/travigo/translink-train/pkg/rules"
	"github.com/urfave/cli/v2"
)

var rulesDirectoryFlag = &cli.StringFlag{
	Name:  "rules",
	Usage: "Directory containing the rule table yaml files",
	Value: "data/rules/",
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Apply the TransLink rail rules to GTFS data",
		Subcommands: []*cli.Command{
			{
				Name:  "resolve",
				Usage: "Resolve routes, headsigns and stops of a GTFS schedule zip",
				Flags: []cli.Flag{
					rulesDirectoryFlag,
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path to the GTFS schedule zip",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "service",
						Usage: "Only keep trips running on this service ID (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "exclude-all-services",
						Usage: "Skip every trip and only resolve routes",
					},
					&cli.BoolFlag{
						Name:  "redis",
						Usage: "Require the Redis resolution cache",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Maximum number of concurrent resolutions",
						Value: defaultMaxGoroutines,
					},
				},
				Action: func(c *cli.Context) error {
					config, err := rules.LoadDirectory(c.String("rules"))
					if err != nil {
						return err
					}

					if c.Bool("exclude-all-services") && len(c.StringSlice("service")) > 0 {
						return errors.New("--service and --exclude-all-services can not be combined")
					}

					services := AllServices()
					if c.Bool("exclude-all-services") || len(c.StringSlice("service")) > 0 {
						services = NewServiceSnapshot(c.StringSlice("service"))
					}

					options := []Option{WithMaxGoroutines(c.Int("workers"))}

					if err := redis_client.Connect(c.Context, c.Bool("redis")); err != nil {
						return err
					}
					if redis_client.Configured() {
						options = append(options, WithCache(func(runID string) *resolvecache.Cache {
							return resolvecache.NewRedis(runID, redis_client.Client)
						}))
					}

					schedule, err := gtfs.ParseZip(c.String("gtfs"))
					if err != nil {
						return err
					}

					result, err := New(config, services, options...).Run(c.Context, schedule)
					if err != nil {
						return err
					}

					for _, route := range result.Routes {
						log.Info().
							Str("route", route.GTFSRouteID).
							Int64("id", route.ID).
							Str("short_name", route.ShortName).
							Str("long_name", route.LongName).
							Str("color", route.Color).
							Msg("Route")
					}

					for _, label := range result.Headsigns {
						log.Info().
							Str("route", label.RouteID).
							Str("line", label.Line).
							Int("direction", label.Direction).
							Str("state", label.State.String()).
							Str("headsign", label.Label).
							Msg("Headsign")
					}

					log.Info().Int("stops", len(result.Stops)).Int("skipped_trips", result.SkippedTrips).Msg("Resolved schedule")
					log.Debug().Msg(pretty.Sprint(result.Stops))

					return nil
				},
			},
			{
				Name:  "check",
				Usage: "Load and validate the rule tables",
				Flags: []cli.Flag{
					rulesDirectoryFlag,
				},
				Action: func(c *cli.Context) error {
					config, err := rules.LoadDirectory(c.String("rules"))
					if err != nil {
						return err
					}

					for _, line := range config.Lines {
						log.Info().
							Str("short_name", line.ShortName).
							Str("long_name", line.LongName).
							Strs("identifiers", line.Identifiers).
							Msg("Line")
					}

					for _, directionSet := range config.Directions {
						log.Info().
							Str("line", directionSet.Line).
							Int("direction", directionSet.Direction).
							Str("label", directionSet.Label).
							Strs("synonyms", directionSet.Synonyms).
							Msg("Direction")
					}

					log.Info().Str("agency", config.Agency.Name).Msg("Rule tables are consistent")

					return nil
				},
			},
			{
				Name:      "normalise",
				Usage:     "Run the normalisation pipeline over the given values",
				ArgsUsage: "<value>...",
				Flags: []cli.Flag{
					rulesDirectoryFlag,
					&cli.StringFlag{
						Name:  "target",
						Usage: "One of headsign, stop-name or long-name",
						Value: normalise.Headsign.String(),
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log the output of every rule of the first pass",
					},
				},
				Action: func(c *cli.Context) error {
					config, err := rules.LoadDirectory(c.String("rules"))
					if err != nil {
						return err
					}

					target, err := normalise.ParseTarget(c.String("target"))
					if err != nil {
						return err
					}

					pipeline := normalise.FromConfig(config)

					for _, value := range c.Args().Slice() {
						if c.Bool("trace") {
							for _, step := range pipeline.Trace(value, target) {
								log.Info().Str("rule", step.Rule).Str("output", step.Output).Msg("Step")
							}
						}

						log.Info().
							Str("target", target.String()).
							Str("raw", value).
							Str("normalised", pipeline.Normalize(value, target)).
							Send()
					}

					return nil
				},
			},
		},
	}
}
