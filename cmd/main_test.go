package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/babellm/internal/config"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.AnalysisLatencyMinMS = 0
	cfg.AnalysisLatencyMaxMS = 0
	cfg.RevealDelayMS = 10
	cfg.RevealAnimationMS = 20
	cfg.FrameIntervalMS = 5
	cfg.CelebrationDelayMS = 0
	cfg.CelebrationMS = 20
	cfg.BurstIntervalMS = 5
	cfg.RenderWorkers = 1
	return cfg
}

func TestNewService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig()

		convey.Convey("When building the service", func() {
			svc, err := newService(ctx, cfg, logger.Nop())

			convey.Convey("Then it uses the memory session backend", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()
				convey.So(svc.Stats(ctx).SessionBackend, convey.ShouldEqual, config.SessionMemory)
			})
		})
	})

	convey.Convey("Given a redis session backend", t, func() {
		ctx := context.Background()
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.SessionBackend = config.SessionRedis
		cfg.RedisAddr = mr.Addr()

		convey.Convey("When building the service", func() {
			svc, err := newService(ctx, cfg, logger.Nop())

			convey.Convey("Then it reports the redis backend", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()
				convey.So(svc.Stats(ctx).SessionBackend, convey.ShouldEqual, config.SessionRedis)
			})
		})
	})

	convey.Convey("Given an unreachable redis", t, func() {
		cfg := testConfig()
		cfg.SessionBackend = config.SessionRedis
		cfg.RedisAddr = "127.0.0.1:1"

		convey.Convey("Then building the service fails", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, err := newService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a mux over a started service", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, testConfig(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(newMux(ctx, svc, logger.Nop()))
		defer srv.Close()

		convey.Convey("Then the quiz page, docs and API are all routed", func() {
			for path, want := range map[string]string{
				"/":             "BabelLM",
				"/api-docs":     "redoc",
				"/openapi.yaml": "openapi:",
				"/questions":    `"id":"q1"`,
			} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				buf := new(strings.Builder)
				_, _ = io.Copy(buf, resp.Body)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(buf.String(), convey.ShouldContainSubstring, want)
			}
		})

		convey.Convey("And a round can be played through the reveal stream", func() {
			resp, err := http.Post(srv.URL+"/rounds", "application/json", strings.NewReader(`{"question_id":"q1"}`))
			convey.So(err, convey.ShouldBeNil)
			var round types.Round
			convey.So(json.NewDecoder(resp.Body).Decode(&round), convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

			resp, err = http.Post(srv.URL+"/rounds/"+round.RoundID+"/submit", "application/json", nil)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)

			resp, err = http.Get(srv.URL + "/rounds/" + round.RoundID + "/reveal")
			convey.So(err, convey.ShouldBeNil)
			buf := new(strings.Builder)
			_, _ = io.Copy(buf, resp.Body)
			_ = resp.Body.Close()
			convey.So(buf.String(), convey.ShouldContainSubstring, "event: all_revealed")
			convey.So(buf.String(), convey.ShouldContainSubstring, "event: end")
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, testConfig(), logger.Nop()) }()

		convey.Convey("When the context is cancelled", func() {
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
