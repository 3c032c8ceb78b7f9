package loamy

import (
	"github.com/kiosk404/loamy/internal/loamy/config"
	"github.com/kiosk404/loamy/internal/loamy/options"
	"github.com/kiosk404/loamy/pkg/app"
	"github.com/kiosk404/loamy/pkg/logger"
)

const commandDesc = `Loamy is a lending assistant. It answers customer questions about
KYC status and loan eligibility and drafts sanction letters, backed by a
Gemini model that calls the lending tools on its behalf.`

// NewApp creates an App object with default parameters.
func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	application := app.NewApp("Loamy API Server",
		basename,
		app.WithOptions(opts),
		app.WithDescription(commandDesc),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)

	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		cfg, err := config.CreateConfigFromOptions(opts)
		if err != nil {
			return err
		}

		logOpts, err := cfg.LoggerOptions()
		if err != nil {
			return err
		}
		if err := logger.Init(logOpts); err != nil {
			return err
		}
		defer logger.FlushLog()

		server, err := createAPIServer(cfg)
		if err != nil {
			return err
		}
		return server.PrepareRun().Run()
	}
}
