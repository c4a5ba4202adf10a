package seed

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/rankscope/internal/domain/ingest"
	"github.com/okian/rankscope/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.InitWith(io.Discard, logger.FormatText)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate(t *testing.T) {
	Convey("Given a seeded config", t, func() {
		cfg := Config{
			Domains: []string{"a.com", "b.com"},
			Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Days:    60,
			Seed:    42,
		}

		Convey("When generating twice", func() {
			first, err1 := generateAt(cfg, fixedNow)
			second, err2 := generateAt(cfg, fixedNow)

			Convey("Then the output is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldResemble, second)
			})

			Convey("And every file ingests cleanly with ascending dates", func() {
				So(first, ShouldHaveLength, 2)
				for _, f := range first {
					So(f.Name, ShouldEqual, f.Domain+".csv")
					res := ingest.Parse(f.Content)
					So(res.Skipped, ShouldEqual, 0)
					So(len(res.Samples), ShouldEqual, f.Rows)
					So(f.Rows, ShouldBeGreaterThan, 0)
					So(f.Rows, ShouldBeLessThanOrEqualTo, cfg.Days)
					for i, s := range res.Samples {
						So(s.Rank, ShouldBeGreaterThanOrEqualTo, 1)
						So(s.Rank, ShouldBeLessThanOrEqualTo, DefaultBaseRank*10)
						So(s.Date >= "2024-01-01" && s.Date <= "2024-02-29", ShouldBeTrue)
						if i > 0 {
							So(res.Samples[i-1].Date < s.Date, ShouldBeTrue)
						}
					}
				}
			})
		})

		Convey("When adding a domain", func() {
			base, _ := generateAt(cfg, fixedNow)
			cfg.Domains = append(cfg.Domains, "c.com")
			more, _ := generateAt(cfg, fixedNow)

			Convey("Then existing series do not change", func() {
				So(more[:2], ShouldResemble, base)
			})
		})

		Convey("When the seed changes", func() {
			base, _ := generateAt(cfg, fixedNow)
			cfg.Seed = 7
			other, _ := generateAt(cfg, fixedNow)

			Convey("Then the series differ", func() {
				So(other[0].Content, ShouldNotEqual, base[0].Content)
			})
		})
	})

	Convey("Given month tokens", t, func() {
		files, err := generateAt(Config{Domains: []string{"m.com"}, Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Days: 100, Seed: 1, MonthTokens: true}, fixedNow)

		Convey("Then month starts use YYYY-MM and still parse to the first day", func() {
			So(err, ShouldBeNil)
			for _, line := range strings.Split(strings.TrimSpace(files[0].Content), "\n") {
				date := strings.SplitN(line, ",", 2)[0]
				if strings.HasSuffix(ingest.NormalizeDate(date), "-01") {
					So(date, ShouldHaveLength, 7)
				}
			}
		})
	})

	Convey("Given defaults", t, func() {
		files, err := generateAt(Config{}, fixedNow)

		Convey("Then default names and window are used", func() {
			So(err, ShouldBeNil)
			So(files, ShouldHaveLength, DefaultDomains)
			So(files[0].Domain, ShouldEqual, "site-1.example")
			res := ingest.Parse(files[0].Content)
			So(res.Samples[0].Date >= "2024-03-03", ShouldBeTrue)
			So(res.Samples[len(res.Samples)-1].Date < "2024-06-01", ShouldBeTrue)
		})
	})

	Convey("Given duplicate or empty names", t, func() {
		_, err := Generate(Config{Domains: []string{"a", "a"}})
		So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		_, err = Generate(Config{Domains: []string{""}})
		So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestWriteDir(t *testing.T) {
	Convey("Given generated files", t, func() {
		files, err := generateAt(Config{Count: 2, Days: 10, Seed: 3}, fixedNow)
		So(err, ShouldBeNil)
		dir := filepath.Join(t.TempDir(), "nested")

		Convey("When writing them", func() {
			paths, err := WriteDir(context.Background(), dir, files)

			Convey("Then each file lands under dir with its content", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldHaveLength, 2)
				raw, readErr := os.ReadFile(paths[1])
				So(readErr, ShouldBeNil)
				So(string(raw), ShouldEqual, files[1].Content)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			paths, err := WriteDir(ctx, dir, files)

			Convey("Then nothing is written", func() {
				So(errors.Is(err, ErrWriteFailure), ShouldBeTrue)
				So(paths, ShouldBeEmpty)
			})
		})
	})
}
