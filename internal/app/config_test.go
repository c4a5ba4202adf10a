package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/config"
	"github.com/okian/rankscope/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file-backed config", t, func() {
		cfg := config.New()
		cfg.StorePath = filepath.Join(t.TempDir(), "data.json")
		cfg.SuggestLimit = 3

		Convey("When building a service twice over the same path", func() {
			svc, err := service.NewFromConfig(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			_, err = svc.Upload(ctx, service.UploadRequest{Text: "2024-01-01,1", Filename: "a.com.csv"})
			So(err, ShouldBeNil)
			svc.Stop()

			again, err := service.NewFromConfig(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			defer again.Stop()

			Convey("Then the second sees the first's uploads and config", func() {
				So(again.Exists(ctx, "a.com"), ShouldBeTrue)
				stats := again.GetStats()
				So(stats["suggestLimit"], ShouldEqual, 3)
				So(stats["remoteSource"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a remote rank API", t, func() {
		remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("domain") {
			case "a.com":
				_, _ = w.Write([]byte(`{"ranks":[{"date":"2024-01-01","rank":3}]}`))
			default:
				_, _ = w.Write([]byte(`{"ranks":[{"date":"2024-01-01","rank":8}]}`))
			}
		}))
		defer remote.Close()

		cfg := config.New()
		cfg.StoreBackend = config.BackendMemory
		cfg.RankAPIURL = remote.URL
		cfg.RankAPITimeoutMS = 2000

		svc, err := service.NewFromConfig(ctx, cfg, logger.Nop())
		So(err, ShouldBeNil)
		defer svc.Stop()

		Convey("Then comparisons read from it", func() {
			So(svc.GetStats()["remoteSource"], ShouldEqual, true)
			cmp, err := svc.Compare(ctx, service.CompareRequest{Domains: []string{"a.com", "b.com"}})
			So(err, ShouldBeNil)
			So(cmp.Series.Axis, ShouldResemble, []string{"2024-01-01"})
			So(*cmp.Series.Values["b.com"][0], ShouldEqual, 8)
		})
	})

	Convey("Given an unknown backend", t, func() {
		cfg := config.New()
		cfg.StoreBackend = "tape"

		Convey("Then no service is built", func() {
			_, err := service.NewFromConfig(ctx, cfg, logger.Nop())
			So(err, ShouldNotBeNil)
		})
	})
}
