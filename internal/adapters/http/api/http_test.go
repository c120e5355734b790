package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/courtside/internal/adapters/http/api"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/clock"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/player"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies records calls and returns canned errors.
type mockDependencies struct {
	startErr     error
	surveyErr    error
	biometricErr error
	cancelErr    error
	durationErr  error
	clockErr     error

	survey       *model.SurveyResponses
	manualValue  *int
	derivedCalls int
	minutes      float64
	mode         clock.Mode
	paused       bool

	records []model.TimelineRecord

	biometricMode string
}

func (m *mockDependencies) SessionID() string { return "session-1" }

func (m *mockDependencies) BiometricMode() string {
	if m.biometricMode == "" {
		return "manual"
	}
	return m.biometricMode
}

func (m *mockDependencies) Snapshot() timeline.Snapshot {
	return timeline.Snapshot{Phase: timeline.PhaseIdle, TimelinePoint: 1, CanStart: true, AdvanceSeconds: 150}
}

func (m *mockDependencies) Player() player.Snapshot {
	return player.Snapshot{Status: model.StatusOnCourt}
}

func (m *mockDependencies) ClockState() clock.State {
	return clock.State{Quarter: 1, Remaining: 600, Mode: clock.ModeLive}
}

func (m *mockDependencies) StartCycle(context.Context) error { return m.startErr }

func (m *mockDependencies) SubmitSurvey(_ context.Context, s model.SurveyResponses) error {
	if m.surveyErr != nil {
		return m.surveyErr
	}
	if err := s.Validate(); err != nil {
		return err
	}
	m.survey = &s
	return nil
}

func (m *mockDependencies) SubmitBiometric(_ context.Context, v int) (model.TimelineRecord, error) {
	if m.biometricErr != nil {
		return model.TimelineRecord{}, m.biometricErr
	}
	if err := model.ValidateBiometricEntry(v); err != nil {
		return model.TimelineRecord{}, err
	}
	m.manualValue = &v
	return model.TimelineRecord{TimelinePoint: 1, BiometricValue: &v}, nil
}

func (m *mockDependencies) SubmitDerivedBiometric(context.Context) (model.TimelineRecord, error) {
	m.derivedCalls++
	v := 77
	return model.TimelineRecord{TimelinePoint: 1, BiometricValue: &v, BiometricSource: model.SourceDerived}, m.biometricErr
}

func (m *mockDependencies) CancelCycle(context.Context) error { return m.cancelErr }

func (m *mockDependencies) SetAdvanceDuration(minutes float64) error {
	if m.durationErr != nil {
		return m.durationErr
	}
	m.minutes = minutes
	return nil
}

func (m *mockDependencies) Timeline(context.Context) []model.TimelineRecord { return m.records }

func (m *mockDependencies) Record(_ context.Context, point int) (model.TimelineRecord, error) {
	for _, r := range m.records {
		if r.TimelinePoint == point {
			return r, nil
		}
	}
	return model.TimelineRecord{}, fmt.Errorf("%w: %d", repository.ErrNotFound, point)
}

func (m *mockDependencies) Dashboard(context.Context) analytics.Dashboard {
	return analytics.Build(m.records)
}

func (m *mockDependencies) StartClock(context.Context) error { return m.clockErr }
func (m *mockDependencies) PauseClock()                      { m.paused = true }
func (m *mockDependencies) AdvanceClock() error              { return m.clockErr }
func (m *mockDependencies) NextQuarter() clock.State {
	return clock.State{Quarter: 2, Remaining: 600, Mode: clock.ModeLive}
}

func (m *mockDependencies) SetClockMode(mode clock.Mode) error {
	m.mode = mode
	return nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, nil)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then the health endpoint exposes metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "courtside_")
		})

		Convey("Then stats are served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
			So(body, ShouldContainKey, "collectedAt")
		})

		Convey("Then the session view combines timeline, player and clock", func() {
			w := do(mux, http.MethodGet, "/session", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["session_id"], ShouldEqual, "session-1")
			So(body["biometric_mode"], ShouldEqual, "manual")
			So(body["timeline"].(map[string]any)["phase"], ShouldEqual, "idle")
			So(body["clock"].(map[string]any)["remaining"], ShouldEqual, 600.0)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/session/start", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/session", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionHandler(t *testing.T) {
	Convey("Given a session API", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When starting a cycle", func() {
			So(do(mux, http.MethodPost, "/session/start", "").Code, ShouldEqual, http.StatusAccepted)
		})

		Convey("When a cycle is already active", func() {
			deps.startErr = timeline.ErrCycleActive
			w := do(mux, http.MethodPost, "/session/start", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "conflict")
		})

		Convey("When the timeline is complete", func() {
			deps.startErr = fmt.Errorf("start: %w", timeline.ErrTimelineComplete)
			So(do(mux, http.MethodPost, "/session/start", "").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When submitting a valid survey", func() {
			w := do(mux, http.MethodPost, "/session/survey", `{"arousal":8,"momentum":2,"flow":9}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(*deps.survey, ShouldResemble, model.SurveyResponses{Arousal: 8, Momentum: 2, Flow: 9})
		})

		Convey("When submitting an out-of-range survey", func() {
			w := do(mux, http.MethodPost, "/session/survey", `{"arousal":10,"momentum":2,"flow":9}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When submitting a survey in the wrong phase", func() {
			deps.surveyErr = timeline.ErrInvalidPhase
			So(do(mux, http.MethodPost, "/session/survey", `{"arousal":5,"momentum":5,"flow":5}`).Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When submitting malformed JSON", func() {
			So(do(mux, http.MethodPost, "/session/survey", `{"arousal":`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When submitting a manual biometric value", func() {
			w := do(mux, http.MethodPost, "/session/biometric", `{"value":95}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(*deps.manualValue, ShouldEqual, 95)
		})

		Convey("When requesting a derived biometric value", func() {
			w := do(mux, http.MethodPost, "/session/biometric", `{"derived":true}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.derivedCalls, ShouldEqual, 1)
		})

		Convey("When the biometric body is empty or non-numeric", func() {
			So(do(mux, http.MethodPost, "/session/biometric", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/biometric", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/biometric", `{"value":"abc"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/biometric", `{"value":60.5}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/biometric", `{"value":60,"derived":true}`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.manualValue, ShouldBeNil)
		})

		Convey("When the service captures biometrics manually", func() {
			deps.biometricMode = "manual"

			Convey("Then a request without a value is rejected", func() {
				So(do(mux, http.MethodPost, "/session/biometric", `{}`).Code, ShouldEqual, http.StatusBadRequest)
				So(deps.derivedCalls, ShouldEqual, 0)
			})
		})

		Convey("When the service derives biometrics", func() {
			deps.biometricMode = api.BiometricDerived

			Convey("Then a request without a value derives the reading", func() {
				w := do(mux, http.MethodPost, "/session/biometric", `{}`)
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.derivedCalls, ShouldEqual, 1)
				So(deps.manualValue, ShouldBeNil)
			})

			Convey("Then an explicit value is still taken as manual entry", func() {
				So(do(mux, http.MethodPost, "/session/biometric", `{"value":70}`).Code, ShouldEqual, http.StatusCreated)
				So(*deps.manualValue, ShouldEqual, 70)
				So(deps.derivedCalls, ShouldEqual, 0)
			})

			Convey("Then the session view reports the mode", func() {
				var body map[string]any
				So(json.Unmarshal(do(mux, http.MethodGet, "/session", "").Body.Bytes(), &body), ShouldBeNil)
				So(body["biometric_mode"], ShouldEqual, "derived")
			})
		})

		Convey("When the biometric value is out of range", func() {
			So(do(mux, http.MethodPost, "/session/biometric", `{"value":200}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When cancelling with nothing active", func() {
			deps.cancelErr = timeline.ErrNothingToCancel
			So(do(mux, http.MethodPost, "/session/cancel", "").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When setting the advance duration", func() {
			So(do(mux, http.MethodPut, "/session/duration", `{"minutes":2.5}`).Code, ShouldEqual, http.StatusOK)
			So(deps.minutes, ShouldEqual, 2.5)
		})

		Convey("When the duration is missing or out of range", func() {
			So(do(mux, http.MethodPut, "/session/duration", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			deps.durationErr = timeline.ErrInvalidDuration
			So(do(mux, http.MethodPut, "/session/duration", `{"minutes":4}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service fails unexpectedly", func() {
			deps.startErr = errors.New("boom")
			w := do(mux, http.MethodPost, "/session/start", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "internal_error")
		})
	})
}

func TestTimelineHandler(t *testing.T) {
	Convey("Given a timeline with one record", t, func() {
		s := model.SurveyResponses{Arousal: 8, Momentum: 2, Flow: 9}
		v := 95
		l := model.LevelHigh
		deps := &mockDependencies{records: []model.TimelineRecord{{
			ID: "r1", TimelinePoint: 1, Quarter: 1,
			Actions: []model.ActionTag{model.ActionScorePoint, model.ActionAssist, model.ActionRebound},
			Survey:  &s, BiometricValue: &v, BiometricLevel: &l,
		}}}
		mux := newMux(deps)

		Convey("Then the list returns it", func() {
			w := do(mux, http.MethodGet, "/timeline", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"count":1`)
		})

		Convey("Then a point can be fetched", func() {
			So(do(mux, http.MethodGet, "/timeline/1", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then an unknown point is not found", func() {
			w := do(mux, http.MethodGet, "/timeline/5", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("Then a non-numeric point is rejected", func() {
			So(do(mux, http.MethodGet, "/timeline/abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then the dashboard reports the performance score", func() {
			w := do(mux, http.MethodGet, "/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var d analytics.Dashboard
			So(json.Unmarshal(w.Body.Bytes(), &d), ShouldBeNil)
			So(d.Records, ShouldEqual, 1)
			So(d.Summaries[0].PerformanceScore, ShouldEqual, 74)
		})
	})

	Convey("Given an empty timeline", t, func() {
		mux := newMux(&mockDependencies{})
		w := do(mux, http.MethodGet, "/timeline", "")
		So(w.Body.String(), ShouldContainSubstring, `"records":[]`)
	})
}

func TestClockHandler(t *testing.T) {
	Convey("Given a clock API", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then the state is readable", func() {
			So(do(mux, http.MethodGet, "/clock", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then starting in manual mode conflicts", func() {
			deps.clockErr = clock.ErrManualMode
			So(do(mux, http.MethodPost, "/clock/start", "").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("Then manual advance outside manual mode conflicts", func() {
			deps.clockErr = clock.ErrNotManual
			So(do(mux, http.MethodPost, "/clock/advance", "").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("Then pause and next quarter succeed", func() {
			So(do(mux, http.MethodPost, "/clock/pause", "").Code, ShouldEqual, http.StatusOK)
			So(deps.paused, ShouldBeTrue)
			w := do(mux, http.MethodPost, "/clock/next-quarter", "")
			So(w.Body.String(), ShouldContainSubstring, `"quarter":2`)
		})

		Convey("Then the mode is validated", func() {
			So(do(mux, http.MethodPut, "/clock/mode", `{"mode":"fast"}`).Code, ShouldEqual, http.StatusOK)
			So(deps.mode, ShouldEqual, clock.ModeFast)
			So(do(mux, http.MethodPut, "/clock/mode", `{"mode":"slow"}`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestErrorWrapping(t *testing.T) {
	Convey("Wrapped errors keep both kind and cause", t, func() {
		err := api.Wrap("api.op", timeline.ErrInvalidPhase)
		So(errors.Is(err, api.ErrConflict), ShouldBeTrue)
		So(errors.Is(err, timeline.ErrInvalidPhase), ShouldBeTrue)
		So(err.Error(), ShouldStartWith, "api.op: ")

		So(api.Wrap("api.op", nil), ShouldBeNil)
		So(errors.Is(api.NewKind("api.op", api.ErrBadRequest), api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(api.WrapKind("api.op", api.ErrNotFound, errors.New("x")), api.ErrNotFound), ShouldBeTrue)
	})
}
