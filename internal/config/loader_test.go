package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/callqa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.STTModel, convey.ShouldEqual, "whisper-1")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CALLQA_ADDR", ":8080")
			_ = os.Setenv("CALLQA_EVAL_PROVIDER", "ollama")
			_ = os.Setenv("CALLQA_EVAL_ENDPOINT", "http://localhost:11434")
			_ = os.Setenv("CALLQA_EVAL_MAX_TOKENS", "512")
			_ = os.Setenv("CALLQA_STT_TIMEOUT_SEC", "30")
			_ = os.Setenv("CALLQA_CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EvalProvider, convey.ShouldEqual, "ollama")
				convey.So(cfg.EvalEndpoint, convey.ShouldEqual, "http://localhost:11434")
				convey.So(cfg.EvalMaxTokens, convey.ShouldEqual, 512)
				convey.So(cfg.STTTimeoutSec, convey.ShouldEqual, 30)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://a.example", "http://b.example"})
			})
		})

		convey.Convey("When OPENAI_API_KEY is set", func() {
			_ = os.Setenv("OPENAI_API_KEY", "sk-shared")
			_ = os.Setenv("CALLQA_EVAL_API_KEY", "sk-eval")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills only the empty capability keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.STTAPIKey, convey.ShouldEqual, "sk-shared")
				convey.So(cfg.EvalAPIKey, convey.ShouldEqual, "sk-eval")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
log_format: json
stt_provider: exec
stt_command: "whisper-cli --threads 4"
eval_temperature: 0.5
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CALLQA_CONFIG", tmpFile)
			_ = os.Setenv("CALLQA_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.STTProvider, convey.ShouldEqual, "exec")
				convey.So(cfg.STTCommand, convey.ShouldEqual, "whisper-cli --threads 4")
				convey.So(cfg.EvalTemperature, convey.ShouldEqual, 0.5)
				convey.So(cfg.EvalModel, convey.ShouldEqual, "gpt-4o")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CALLQA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CALLQA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown provider", func() {
			_ = os.Setenv("CALLQA_STT_PROVIDER", "carrier-pigeon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "stt_provider")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CALLQA_EVAL_MAX_TOKENS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"CALLQA_CONFIG", "CALLQA_ADDR", "CALLQA_EVAL_PROVIDER", "CALLQA_EVAL_ENDPOINT",
		"CALLQA_EVAL_MAX_TOKENS", "CALLQA_STT_TIMEOUT_SEC", "CALLQA_CORS_ALLOWED_ORIGINS",
		"CALLQA_EVAL_API_KEY", "CALLQA_STT_API_KEY", "CALLQA_STT_PROVIDER", "OPENAI_API_KEY",
	} {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "callqa-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
