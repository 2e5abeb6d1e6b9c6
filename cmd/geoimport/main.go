package main

import (
	"os"

	"github.com/woozymasta/geosurvey/internal/config"
	"github.com/woozymasta/geosurvey/internal/geo"
	"github.com/woozymasta/geosurvey/internal/importer"
	"github.com/woozymasta/geosurvey/internal/logger"
	"github.com/woozymasta/geosurvey/internal/record"
	"github.com/woozymasta/geosurvey/internal/scene"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"       env:"CONFIG_FILE"  description:"Path to configuration file"`
	Dir         string `short:"d" long:"dir"          env:"CSV_DIR"      description:"Directory of survey CSV files" required:"true"`
	Mercator    string `short:"m" long:"mercator"     env:"MERCATOR_CSV" description:"CSV file imported as labeled points"`
	Output      string `short:"o" long:"out"          env:"OUTPUT_DIR"   description:"Scene output directory" default:"scene"`
	PreviewSize int    `long:"preview-size"           env:"PREVIEW_SIZE" description:"Preview image size in pixels" default:"512"`
	Preview     bool   `short:"p" long:"preview"      description:"Write a WebP top view for every point cloud"`
	DryRun      bool   `short:"n" long:"dry-run"      description:"Build the scene in memory only"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	normalizer := record.NewNormalizer(cfg.Columns)

	// Reference latitude must cover every file before anything is projected
	ref, err := record.DirectoryReferenceLatitude(opts.Dir, normalizer)
	if err != nil {
		log.Fatal().Err(err).Str("dir", opts.Dir).Msg("Failed to compute reference latitude")
	}

	projector := geo.NewProjectorWithScales(ref, cfg.Projection.LatitudeScale, cfg.Projection.LongitudeScale)

	var (
		host   scene.Host
		writer *scene.Writer
	)
	if opts.DryRun {
		host = scene.NewMemory()
	} else {
		writer, err = scene.NewWriter(opts.Output, opts.Preview, opts.PreviewSize)
		if err != nil {
			log.Fatal().Err(err).Str("dir", opts.Output).Msg("Failed to prepare output directory")
		}
		host = writer
	}

	if opts.Mercator != "" {
		log.Info().Str("file", opts.Mercator).Msg("Importing points from Mercator CSV")

		points := importer.NewPointImporter(projector, host, cfg.Columns)
		if _, err := points.ImportFile(opts.Mercator, normalizer); err != nil {
			log.Fatal().Err(err).Msg("Failed to import points")
		}
	}

	log.Info().Str("dir", opts.Dir).Msg("Processing point clouds from directory")

	files, err := record.ListCSV(opts.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", opts.Dir).Msg("Failed to list CSV files")
	}

	clouds := &importer.CloudBuilder{
		Projector: projector,
		Host:      host,
		Suffix:    cfg.PointCloud.Suffix,
		Material: scene.Material{
			Name:    cfg.PointCloud.Material,
			Diffuse: cfg.PointCloud.Color,
		},
	}

	for _, path := range files {
		if _, err := clouds.BuildFile(path, normalizer); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to build point cloud")
		}
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Fatal().Err(err).Msg("Failed to write scene")
		}
	}

	log.Info().
		Int("files", len(files)).
		Bool("dry_run", opts.DryRun).
		Msg("Point clouds created from all CSV files")
}
