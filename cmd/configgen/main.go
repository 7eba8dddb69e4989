package main

import (
	"flag"

	"github.com/danmuck/drawembed/internal/config"
	"github.com/danmuck/drawembed/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()

	kind := flag.String("kind", "relay", "config kind: embed|relay")
	output := flag.String("output", "cmd/embedctl/drawembed.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "cmd/embedctl/drawembed.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal().Err(err).Msg("configgen: validate")
		}
		rc, err := cfg.RelayConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("configgen: validate")
		}
		if err := rc.ValidateServerTransport(); err != nil {
			log.Fatal().Err(err).Msg("configgen: validate")
		}
		log.Info().Str("path", *input).Str("embed_url", rc.EmbedURL).Msg("configgen: validated config")
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("configgen: write")
	}
	log.Info().Str("kind", *kind).Str("path", *output).Msg("configgen: wrote config template")
}
