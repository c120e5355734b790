package simulate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/courtside/internal/adapters/http/api"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/internal/simulate"
	"github.com/okian/courtside/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func baseConfig() *simulate.Config {
	return &simulate.Config{
		Seed:           3,
		Checkpoints:    simulate.MaxCheckpoints,
		BiometricMode:  simulate.ModeManual,
		AdvanceMinutes: 1.0,
		Timeout:        5 * time.Second,
		Format:         simulate.FormatYAML,
	}
}

func TestRun_InProcess(t *testing.T) {
	Convey("Given an in-process simulation", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		cfg := baseConfig()

		Convey("When all checkpoints are played with manual readings", func() {
			report, err := simulate.Run(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then seven complete records are reported in order", func() {
				So(report.Records, ShouldHaveLength, model.MaxTimelinePoints)
				for i, rec := range report.Records {
					So(rec.TimelinePoint, ShouldEqual, i+1)
					So(rec.Complete(), ShouldBeTrue)
					So(*rec.BiometricValue, ShouldBeBetweenOrEqual, model.BiometricEntryMin, model.BiometricEntryMax)
					So(rec.BiometricSource, ShouldEqual, model.SourceManual)
				}
				So(report.Stats.Committed, ShouldEqual, model.MaxTimelinePoints)
				So(report.Dashboard.Records, ShouldEqual, model.MaxTimelinePoints)
				So(report.Target, ShouldEqual, "in-process")
			})

			Convey("Then the same seed gives the same survey answers", func() {
				again, err := simulate.Run(ctx, baseConfig())
				So(err, ShouldBeNil)
				for i := range report.Records {
					So(*again.Records[i].Survey, ShouldResemble, *report.Records[i].Survey)
					So(*again.Records[i].BiometricValue, ShouldEqual, *report.Records[i].BiometricValue)
				}
			})
		})

		Convey("When derived readings are requested", func() {
			cfg.BiometricMode = simulate.ModeDerived
			cfg.Checkpoints = 3
			report, err := simulate.Run(ctx, cfg)

			Convey("Then every record is derived", func() {
				So(err, ShouldBeNil)
				So(report.Records, ShouldHaveLength, 3)
				for _, rec := range report.Records {
					So(rec.BiometricSource, ShouldEqual, model.SourceDerived)
					So(*rec.BiometricValue, ShouldBeBetweenOrEqual, 30, 160)
				}
			})
		})

		Convey("When the config is invalid", func() {
			cfg.Checkpoints = 8
			_, err := simulate.Run(ctx, cfg)

			Convey("Then the run is refused", func() {
				So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestRun_HTTP(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		svc := service.New(service.WithPacing(timeline.Pacing{}), service.WithRandomSeed(5))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, nil).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the simulation drives it over HTTP", func() {
			cfg := baseConfig()
			cfg.BaseURL = srv.URL
			cfg.Checkpoints = 2
			report, err := simulate.Run(ctx, cfg)

			Convey("Then the service history matches the report", func() {
				So(err, ShouldBeNil)
				So(report.SessionID, ShouldEqual, svc.SessionID())
				So(report.Records, ShouldHaveLength, 2)
				So(svc.Timeline(ctx), ShouldHaveLength, 2)
				So(svc.ClockState().Remaining, ShouldEqual, 480)
			})
		})

		Convey("When the service is unreachable", func() {
			cfg := baseConfig()
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := simulate.Run(ctx, cfg)

			Convey("Then the run fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestReport_Encode(t *testing.T) {
	Convey("Given a short report", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := baseConfig()
		cfg.Checkpoints = 2
		report, err := simulate.Run(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("When it is encoded as YAML", func() {
			var buf bytes.Buffer
			So(report.Encode(&buf, simulate.FormatYAML), ShouldBeNil)

			Convey("Then the records can be read back", func() {
				var doc struct {
					Seed    int64 `yaml:"seed"`
					Records []struct {
						TimelinePoint int `yaml:"timeline_point"`
					} `yaml:"records"`
				}
				So(yaml.Unmarshal(buf.Bytes(), &doc), ShouldBeNil)
				So(doc.Seed, ShouldEqual, int64(3))
				So(doc.Records, ShouldHaveLength, 2)
				So(doc.Records[1].TimelinePoint, ShouldEqual, 2)
			})
		})

		Convey("When it is saved as JSON", func() {
			path := filepath.Join(t.TempDir(), "report.json")
			So(report.Save(path, simulate.FormatJSON), ShouldBeNil)

			Convey("Then the file holds the session id", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				var doc map[string]any
				So(json.Unmarshal(data, &doc), ShouldBeNil)
				So(doc["session_id"], ShouldEqual, report.SessionID)
			})
		})

		Convey("When an unknown format is requested", func() {
			err := report.Encode(&bytes.Buffer{}, "xml")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
