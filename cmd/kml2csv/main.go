package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/geosurvey/internal/config"
	"github.com/woozymasta/geosurvey/internal/kml"
	"github.com/woozymasta/geosurvey/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file"`
	Input      string `short:"i" long:"in"     description:"Input KML file. Prompted for if empty"`
	Output     string `short:"o" long:"out"    description:"Output CSV file. Prompted for if empty"`
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

	stdin := bufio.NewReader(os.Stdin)
	if opts.Input == "" {
		if opts.Input, err = prompt(stdin, os.Stdout, "Enter the path to the input KML file: "); err != nil {
			log.Fatal().Err(err).Msg("Failed to read input path")
		}
	}
	if opts.Output == "" {
		if opts.Output, err = prompt(stdin, os.Stdout, "Enter the path for the output CSV file: "); err != nil {
			log.Fatal().Err(err).Msg("Failed to read output path")
		}
	}

	extractor := kml.Extractor{Keys: cfg.KML.Attributes}
	n, err := extractor.Convert(opts.Input, opts.Output)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert KML")
	}

	log.Info().
		Str("in", opts.Input).
		Str("out", opts.Output).
		Int("placemarks", n).
		Msg("KML converted to CSV")
}

// prompt asks for a single line of input. An empty answer is an error.
func prompt(in *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", errors.New("no path given")
	}

	return answer, nil
}
