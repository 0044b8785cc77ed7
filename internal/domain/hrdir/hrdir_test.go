package hrdir_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const hrFile = `nome,Nome in Sales CSV,data_assunzione,ore_settimanali,reparto
Mario Rossi,M ROSSI,15/03/2020,40,Roma
Giulia Bianchi,,01/09/2024 00:00:00,24,Valmontone
Luca Verdi,L VERDI,,,
`

func TestParseFile(t *testing.T) {
	Convey("Given an HR export with aliases", t, func() {
		profiles, aliases, err := hrdir.ParseFile(strings.NewReader(hrFile))

		Convey("Then every named row becomes a profile", func() {
			So(err, ShouldBeNil)
			So(len(profiles), ShouldEqual, 3)
			So(profiles[0].FullName, ShouldEqual, "Mario Rossi")
			So(profiles[0].Department, ShouldEqual, "Roma")
			So(profiles[0].Status, ShouldEqual, model.HRStatusActive)
		})

		Convey("And dates and hours are normalized", func() {
			So(profiles[0].HireDate.Equal(time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(profiles[1].HireDate.Equal(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(*profiles[1].WeeklyHours, ShouldEqual, 24)
			So(profiles[2].HireDate, ShouldBeNil)
			So(profiles[2].WeeklyHours, ShouldBeNil)
		})

		Convey("And the alias table maps sales names to HR names", func() {
			So(aliases, ShouldResemble, map[string]string{"M ROSSI": "Mario Rossi", "L VERDI": "Luca Verdi"})
		})
	})

	Convey("Given a file without a name column", t, func() {
		_, _, err := hrdir.ParseFile(strings.NewReader("foo,bar\n1,2\n"))

		Convey("Then it fails with a parse error", func() {
			So(errors.Is(err, model.ErrParse), ShouldBeTrue)
			So(errors.Is(err, hrdir.ErrMissingNameCol), ShouldBeTrue)
		})
	})

	Convey("Given an empty file", t, func() {
		_, _, err := hrdir.ParseFile(strings.NewReader(""))

		Convey("Then the header is reported missing", func() {
			So(errors.Is(err, hrdir.ErrMissingHeader), ShouldBeTrue)
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("Dates are read as calendar days", t, func() {
		d, ok := hrdir.ParseDate("05/11/2019")
		So(ok, ShouldBeTrue)
		So(d.Equal(time.Date(2019, time.November, 5, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)

		d, ok = hrdir.ParseDate("2019-11-05")
		So(ok, ShouldBeTrue)
		So(d.Day(), ShouldEqual, 5)

		_, ok = hrdir.ParseDate("yesterday")
		So(ok, ShouldBeFalse)
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a directory built from the HR export", t, func() {
		profiles, aliases, err := hrdir.ParseFile(strings.NewReader(hrFile))
		So(err, ShouldBeNil)
		dir := hrdir.New(profiles, aliases)

		Convey("Then a case-insensitive exact match resolves", func() {
			p, err := dir.Lookup("MARIO ROSSI")
			So(err, ShouldBeNil)
			So(p.FullName, ShouldEqual, "Mario Rossi")
		})

		Convey("Then the alias table is used as a fallback", func() {
			p, err := dir.Lookup("l verdi")
			So(err, ShouldBeNil)
			So(p.FullName, ShouldEqual, "Luca Verdi")
		})

		Convey("Then unknown names miss without failing hard", func() {
			_, err := dir.Lookup("NOBODY")
			So(errors.Is(err, model.ErrMissingHRMatch), ShouldBeTrue)
		})

		Convey("Then the size counts indexed profiles", func() {
			So(dir.Len(), ShouldEqual, 3)
		})
	})

	Convey("Given a nil directory", t, func() {
		var dir *hrdir.Directory

		Convey("Then every lookup misses", func() {
			_, err := dir.Lookup("MARIO ROSSI")
			So(errors.Is(err, model.ErrMissingHRMatch), ShouldBeTrue)
			So(dir.Len(), ShouldEqual, 0)
		})
	})
}
