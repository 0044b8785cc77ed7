package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/salesdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Sales.PollInterval, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Sales.MaxPollAttempts, convey.ShouldEqual, 120)
			convey.So(cfg.Sales.SessionTTL, convey.ShouldEqual, time.Hour)
			convey.So(cfg.Sales.DocTypes, convey.ShouldResemble, []string{"VE", "AR"})
			convey.So(cfg.HR.Source, convey.ShouldEqual, config.HRSourceNone)
			convey.So(cfg.HR.TokenTTL, convey.ShouldEqual, time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Scoring.SalesWeight, convey.ShouldEqual, 0.40)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SALESDASH_ADDR", ":8080")
			_ = os.Setenv("SALESDASH_SALES__POLL_INTERVAL", "2s")
			_ = os.Setenv("SALESDASH_SALES__MAX_POLL_ATTEMPTS", "10")
			_ = os.Setenv("SALESDASH_SALES__DOC_TYPES", "VE, AR ,NC")
			_ = os.Setenv("SALESDASH_HR__ACTIVE_ONLY", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Sales.PollInterval, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.Sales.MaxPollAttempts, convey.ShouldEqual, 10)
				convey.So(cfg.Sales.DocTypes, convey.ShouldResemble, []string{"VE", "AR", "NC"})
				convey.So(cfg.HR.ActiveOnly, convey.ShouldBeFalse)
				convey.So(cfg.Sales.APIVersion, convey.ShouldEqual, "V2.6/api")
			})
		})

		convey.Convey("When loading config with YAML file and env overrides", func() {
			yamlContent := `
addr: ":9090"
sales:
  base_url: "https://pos.example.test"
  username: "svc"
hr:
  source: file
  directory_file: /tmp/hr.csv
scoring:
  compare_with_previous: true
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("SALESDASH_CONFIG", tmpFile)
			_ = os.Setenv("SALESDASH_SALES__USERNAME", "override")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values are merged and env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Sales.BaseURL, convey.ShouldEqual, "https://pos.example.test")
				convey.So(cfg.Sales.Username, convey.ShouldEqual, "override")
				convey.So(cfg.HR.Source, convey.ShouldEqual, config.HRSourceFile)
				convey.So(cfg.Scoring.CompareWithPrevious, convey.ShouldBeTrue)
				convey.So(cfg.Sales.PollInterval, convey.ShouldEqual, 5*time.Second)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("SALESDASH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SALESDASH_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid values", func() {
			cases := map[string]string{
				"SALESDASH_ADDR":                  "",
				"SALESDASH_HR__SOURCE":            "ldap",
				"SALESDASH_SCORING__SALES_WEIGHT": "0.5",
			}
			for key, value := range cases {
				clearConfigEnvVars()
				_ = os.Setenv(key, value)

				cfg, err := config.Load(ctx)

				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When a file source has no directory file", func() {
			_ = os.Setenv("SALESDASH_HR__SOURCE", "file")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "directory_file")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SALESDASH_REFRESH_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"SALESDASH_CONFIG",
		"SALESDASH_ADDR",
		"SALESDASH_REFRESH_QUEUE_SIZE",
		"SALESDASH_SALES__POLL_INTERVAL",
		"SALESDASH_SALES__MAX_POLL_ATTEMPTS",
		"SALESDASH_SALES__DOC_TYPES",
		"SALESDASH_SALES__USERNAME",
		"SALESDASH_HR__ACTIVE_ONLY",
		"SALESDASH_HR__SOURCE",
		"SALESDASH_SCORING__SALES_WEIGHT",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "salesdash-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	_ = f.Close()
	return f.Name()
}
