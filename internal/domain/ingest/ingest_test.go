package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/okian/rankscope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given CSV text mixing month and day tokens", t, func() {
		text := "2024-01,50\n2024-01-15,40\nbad,xx\n2024-02,30"

		Convey("When parsing it", func() {
			res := Parse(text)

			Convey("Then months expand to the first day and rows sort by date", func() {
				So(res.Samples, ShouldResemble, []model.Sample{
					{Date: "2024-01-01", Rank: 50},
					{Date: "2024-01-15", Rank: 40},
					{Date: "2024-02-01", Rank: 30},
				})
				So(res.Skipped, ShouldEqual, 1)
			})
		})
	})

	Convey("Given rows that must be discarded", t, func() {
		text := strings.Join([]string{
			"",
			"   ",
			"2024-01-01",      // one field
			",12",             // empty date
			"2024-01-02,",     // empty rank
			"2024-01-03,abc",  // not a number
			"2024-01-04,1.5",  // not an integer
			"2024-01-05, 7 ",  // ok, padded
			"2024-01-06,8,x,y", // ok, extra fields ignored
			"\r",
		}, "\n")

		Convey("When parsing it", func() {
			res := Parse(text)

			Convey("Then only well-formed rows survive and blanks are not counted", func() {
				So(res.Samples, ShouldResemble, []model.Sample{
					{Date: "2024-01-05", Rank: 7},
					{Date: "2024-01-06", Rank: 8},
				})
				So(res.Skipped, ShouldEqual, 5)
			})
		})
	})

	Convey("Given duplicate dates", t, func() {
		res := Parse("2024-03-01,9\n2024-01-01,1\n2024-03-01,3")

		Convey("Then both rows are kept in input order", func() {
			So(res.Samples, ShouldResemble, []model.Sample{
				{Date: "2024-01-01", Rank: 1},
				{Date: "2024-03-01", Rank: 9},
				{Date: "2024-03-01", Rank: 3},
			})
		})
	})

	Convey("Given CRLF line endings", t, func() {
		res := Parse("2024-01-02,2\r\n2024-01-01,1\r\n")

		Convey("Then lines are trimmed", func() {
			So(res.Samples, ShouldResemble, []model.Sample{{Date: "2024-01-01", Rank: 1}, {Date: "2024-01-02", Rank: 2}})
		})
	})
}

func TestParseOrderingProperty(t *testing.T) {
	Convey("Given arbitrary shuffled rows", t, func() {
		text := "2023-12,4\n2024-02-29,1\nfoo,2\n2022-07-04,3\n2024-02,5\n2024-02-01,6\n"
		res := Parse(text)

		Convey("Then output is ascending and every sample has a date", func() {
			for i, s := range res.Samples {
				So(s.Date, ShouldNotBeEmpty)
				if i > 0 {
					So(res.Samples[i-1].Date <= s.Date, ShouldBeTrue)
				}
			}
		})
	})
}

func TestNormalizeDate(t *testing.T) {
	Convey("Given date tokens", t, func() {
		So(NormalizeDate("2024-01"), ShouldEqual, "2024-01-01")
		So(NormalizeDate("2024-01-31"), ShouldEqual, "2024-01-31")
		So(NormalizeDate("2024-1"), ShouldEqual, "2024-1")
		So(NormalizeDate("2024/01"), ShouldEqual, "2024/01")
		So(NormalizeDate("20a4-01"), ShouldEqual, "20a4-01")
		So(NormalizeDate("not-a-date"), ShouldEqual, "not-a-date")
	})
}

func TestResolveDomainName(t *testing.T) {
	Convey("Given an explicit name", t, func() {
		So(ResolveDomainName(" google.com ", "whatever.csv"), ShouldEqual, "google.com")
	})

	Convey("Given only a filename", t, func() {
		So(ResolveDomainName("", "github.com.csv"), ShouldEqual, "github.com")
		So(ResolveDomainName("  ", "ranks.txt"), ShouldEqual, "ranks.txt")
		So(ResolveDomainName("", "a.csvx.csv"), ShouldEqual, "a.csvx")
		So(ResolveDomainName("", "data.csv.bak"), ShouldEqual, "data.csv.bak")
	})
}

func TestIngest(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	src := model.Source{Filename: "example.org.csv", Size: 64}

	Convey("Given valid text", t, func() {
		rec, res, err := Ingest("2024-01-02,20\n2024-01-01,10", src, "", now)

		Convey("Then a complete record is produced", func() {
			So(err, ShouldBeNil)
			So(res.Skipped, ShouldEqual, 0)
			So(rec.Domain, ShouldEqual, "example.org")
			So(rec.Filename, ShouldEqual, "example.org.csv")
			So(rec.Size, ShouldEqual, int64(64))
			So(rec.UploadDate, ShouldEqual, "2024-05-01T08:30:00.000Z")
			So(rec.Ranks, ShouldResemble, []model.Sample{{Date: "2024-01-01", Rank: 10}, {Date: "2024-01-02", Rank: 20}})
		})
	})

	Convey("Given empty or malformed-only text", t, func() {
		for _, text := range []string{"", "\n\n", "header,rank\nfoo\n,3"} {
			_, _, err := Ingest(text, src, "x", now)
			So(errors.Is(err, ErrNoValidData), ShouldBeTrue)
		}
	})
}

func TestIngestReader(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a reader with content and no declared size", t, func() {
		body := "2024-01,3\n"
		rec, _, err := IngestReader(context.Background(), strings.NewReader(body), model.Source{Filename: "a.csv"}, "", now)

		Convey("Then the size is the number of bytes read", func() {
			So(err, ShouldBeNil)
			So(rec.Size, ShouldEqual, int64(len(body)))
			So(rec.Domain, ShouldEqual, "a")
		})
	})

	Convey("Given a failing reader", t, func() {
		_, _, err := IngestReader(context.Background(), iotest.ErrReader(errors.New("disk gone")), model.Source{Filename: "a.csv"}, "", now)

		Convey("Then the error is a read failure", func() {
			So(errors.Is(err, ErrReadFailure), ShouldBeTrue)
			So(errors.Is(err, ErrNoValidData), ShouldBeFalse)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := IngestReader(ctx, strings.NewReader("2024-01,1"), model.Source{}, "a", now)

		Convey("Then nothing is read", func() {
			So(errors.Is(err, ErrReadFailure), ShouldBeTrue)
		})
	})
}
