package model

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDomainRecord(t *testing.T) {
	Convey("Given a domain record", t, func() {
		rec := DomainRecord{
			Domain:     "example.com",
			Ranks:      []Sample{{Date: "2024-01-01", Rank: 5}, {Date: "2024-01-02", Rank: 7}},
			UploadDate: "2024-02-01T10:00:00.000Z",
			Filename:   "example.com.csv",
			Size:       42,
		}

		Convey("When summarizing it", func() {
			s := rec.Summary()

			Convey("Then the count reflects the samples", func() {
				So(s, ShouldResemble, DomainSummary{
					Domain:     "example.com",
					Filename:   "example.com.csv",
					Size:       42,
					UploadDate: "2024-02-01T10:00:00.000Z",
					Count:      2,
				})
			})
		})

		Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(rec)

			Convey("Then the persisted field names are used", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"domain":"example.com","ranks":[{"date":"2024-01-01","rank":5},{"date":"2024-01-02","rank":7}],"uploadDate":"2024-02-01T10:00:00.000Z","filename":"example.com.csv","size":42}`)
			})
		})
	})
}

func TestFormatUploadDate(t *testing.T) {
	Convey("Given a local time", t, func() {
		loc := time.FixedZone("CET", 3600)
		ts := time.Date(2024, 3, 5, 13, 4, 5, 123456789, loc)

		Convey("Then it is rendered in UTC with milliseconds", func() {
			So(FormatUploadDate(ts), ShouldEqual, "2024-03-05T12:04:05.123Z")
		})
	})
}

func TestAlignedSeriesEmpty(t *testing.T) {
	Convey("Given aligned series", t, func() {
		So(AlignedSeries{}.Empty(), ShouldBeTrue)
		So(AlignedSeries{Axis: []string{"2024-01-01"}}.Empty(), ShouldBeFalse)
	})
}
