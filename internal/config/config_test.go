package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/callqa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.STTProvider, convey.ShouldEqual, config.ProviderOpenAI)
			convey.So(cfg.EvalProvider, convey.ShouldEqual, config.ProviderOpenAI)
			convey.So(cfg.STTAPIKey, convey.ShouldBeEmpty)
			convey.So(cfg.TraceExporter, convey.ShouldEqual, config.TraceExporterNone)
			convey.So(cfg.EvalTimeout(), convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"bad log format":    func(c *config.Config) { c.LogFormat = "xml" },
			"bad stt provider":  func(c *config.Config) { c.STTProvider = "ollama" },
			"bad eval provider": func(c *config.Config) { c.EvalProvider = "bard" },
			"bad exporter":      func(c *config.Config) { c.TraceExporter = "zipkin" },
			"zero timeout":      func(c *config.Config) { c.EvalTimeoutSec = 0 },
			"hot temperature":   func(c *config.Config) { c.EvalTemperature = 3 },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
