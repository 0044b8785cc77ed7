package ecosagile_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/salesdash/internal/adapters/ecosagile"
	"github.com/okian/salesdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	tokenOK   = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_DATA":{"ECOSAGILE_DATA_ROW":{"AuthToken":"TOK-1"}}}}`
	tokenFail = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_ERROR_MESSAGE":{"CODE":"FAIL","USERMESSAGE":"Invalid user"}}}`
	people    = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_DATA":{"ECOSAGILE_DATA_ROW":[
		{"EmplID":"101","NameFirst":"Mario","NameLast":"Rossi","DepartmentDescShort":"Roma Est","HireDate":"15/03/2020 00:00:00","ParttimePercent":"50","PersonStatusCode":"A","Delete":"0"},
		{"EmplCode":"102","Nome":"Giulia","Cognome":"Bianchi","DepartmentDescShort":"Valmontone","PersonStatusCode":"A"},
		{"EmplID":"103","NameFirst":"Old","NameLast":"Record","PersonStatusCode":"A","Delete":"1"}
	]}}}`
	single = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_DATA":{"ECOSAGILE_DATA_ROW":{"EmplID":7,"NameFirst":"Solo","NameLast":"One","PersonStatusCode":"I"}}}}`
)

type hrStub struct {
	server     *httptest.Server
	tokenCalls atomic.Int32
	apiCalls   atomic.Int32
	tokenBody  string
	peopleBody string
	lastQuery  atomic.Value
	lastForm   atomic.Value
}

func newHRStub() *hrStub {
	s := &hrStub{tokenBody: tokenOK, peopleBody: people}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.URL.Path != "/INST/api.pm" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("ApiName") {
		case "TokenGet":
			s.tokenCalls.Add(1)
			_, _ = w.Write([]byte(s.tokenBody))
		default:
			s.apiCalls.Add(1)
			s.lastQuery.Store(r.URL.Query())
			s.lastForm.Store(r.PostForm)
			_, _ = w.Write([]byte(s.peopleBody))
		}
	}))
	return s
}

func (s *hrStub) creds() ecosagile.Credentials {
	return ecosagile.Credentials{
		Endpoint:     s.server.URL,
		InstanceCode: "INST",
		UserID:       "api",
		Password:     "secret",
		ClientID:     "client",
	}
}

func TestCredentials(t *testing.T) {
	Convey("Given incomplete credentials", t, func() {
		err := ecosagile.Credentials{Endpoint: "https://hr", UserID: "u"}.Validate()

		Convey("Then every missing field is listed", func() {
			So(errors.Is(err, ecosagile.ErrIncompleteCredentials), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "instanceCode, password, clientId")
		})
	})

	Convey("Given credentials saved to disk", t, func() {
		path := filepath.Join(t.TempDir(), "hr", "credentials.yaml")
		creds := ecosagile.Credentials{Endpoint: "https://hr", InstanceCode: "I", UserID: "u", Password: "p", ClientID: "c"}
		So(ecosagile.SaveCredentials(path, creds), ShouldBeNil)

		Convey("Then they load back unchanged", func() {
			loaded, err := ecosagile.LoadCredentials(path)
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, creds)
		})
	})
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given an EcosAgile instance", t, func() {
		s := newHRStub()
		defer s.server.Close()

		Convey("When a token is requested twice within the hour", func() {
			now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
			ts, err := ecosagile.NewTokenSource(s.creds(), ecosagile.WithClock(func() time.Time { return now }))
			So(err, ShouldBeNil)
			tok, err := ts.Token(ctx)
			So(err, ShouldBeNil)
			now = now.Add(30 * time.Minute)
			_, _ = ts.Token(ctx)

			Convey("Then the cached token is reused", func() {
				So(tok, ShouldEqual, "TOK-1")
				So(s.tokenCalls.Load(), ShouldEqual, 1)
			})

			Convey("And after Invalidate a new token is fetched", func() {
				ts.Invalidate()
				_, _ = ts.Token(ctx)
				So(s.tokenCalls.Load(), ShouldEqual, 2)
			})

			Convey("And after the hour a new token is fetched", func() {
				now = now.Add(31 * time.Minute)
				_, _ = ts.Token(ctx)
				So(s.tokenCalls.Load(), ShouldEqual, 2)
			})

			Convey("And Refresh always fetches", func() {
				sess, err := ts.Refresh(ctx)
				So(err, ShouldBeNil)
				So(sess.Token, ShouldEqual, "TOK-1")
				So(s.tokenCalls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the instance rejects the user", func() {
			s.tokenBody = tokenFail
			ts, _ := ecosagile.NewTokenSource(s.creds())
			err := ts.TestConnection(ctx)

			Convey("Then it is an authentication failure with the user message", func() {
				So(errors.Is(err, model.ErrAuthentication), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Invalid user")
			})
		})

		Convey("When the response has no token", func() {
			s.tokenBody = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_DATA":{"ECOSAGILE_DATA_ROW":{}}}}`
			ts, _ := ecosagile.NewTokenSource(s.creds())
			_, err := ts.Token(ctx)

			Convey("Then it is an authentication failure", func() {
				So(errors.Is(err, ecosagile.ErrNoToken), ShouldBeTrue)
			})
		})
	})

	Convey("Given incomplete credentials", t, func() {
		_, err := ecosagile.NewTokenSource(ecosagile.Credentials{})

		Convey("Then no token source is built", func() {
			So(errors.Is(err, ecosagile.ErrIncompleteCredentials), ShouldBeTrue)
		})
	})
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a people registry", t, func() {
		s := newHRStub()
		defer s.server.Close()
		ts, err := ecosagile.NewTokenSource(s.creds())
		So(err, ShouldBeNil)
		dir := ecosagile.NewDirectory(ecosagile.NewCaller(s.creds(), ts))

		Convey("When fetching active employees", func() {
			profiles, err := dir.ActiveEmployees(ctx)

			Convey("Then soft-deleted rows are dropped", func() {
				So(err, ShouldBeNil)
				So(len(profiles), ShouldEqual, 2)
			})

			Convey("And the filters and token are sent", func() {
				form := s.lastForm.Load().(url.Values)
				So(form["PersonStatusCode"], ShouldResemble, []string{"='A'"})
				So(form["TerminationDate"], ShouldResemble, []string{"=''"})
				q := s.lastQuery.Load().(url.Values)
				So(q["AuthToken"], ShouldResemble, []string{"TOK-1"})
			})

			Convey("And rows are mapped to profiles", func() {
				mario := profiles[0]
				So(mario.ID, ShouldEqual, "101")
				So(mario.FullName, ShouldEqual, "Mario Rossi")
				So(*mario.WeeklyHours, ShouldEqual, 20)
				So(mario.HireDate.Equal(time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(mario.Status, ShouldEqual, model.HRStatusActive)

				giulia := profiles[1]
				So(giulia.ID, ShouldEqual, "102")
				So(giulia.FullName, ShouldEqual, "Giulia Bianchi")
				So(*giulia.WeeklyHours, ShouldEqual, 40)
				So(giulia.Position, ShouldEqual, "Not specified")
				So(giulia.HireDate, ShouldBeNil)
			})
		})

		Convey("When filtering by department", func() {
			profiles, err := dir.ByDepartment(ctx, "roma")

			Convey("Then only matching departments are returned", func() {
				So(err, ShouldBeNil)
				So(len(profiles), ShouldEqual, 1)
				So(profiles[0].FullName, ShouldEqual, "Mario Rossi")
			})
		})

		Convey("When the registry returns a single row object", func() {
			s.peopleBody = single
			profiles, err := dir.AllEmployees(ctx)

			Convey("Then it is normalized to a list", func() {
				So(err, ShouldBeNil)
				So(len(profiles), ShouldEqual, 1)
				So(profiles[0].ID, ShouldEqual, "7")
				So(profiles[0].Status, ShouldEqual, model.HRStatusInactive)
			})
		})

		Convey("When the registry call fails", func() {
			s.peopleBody = `{"ECOSAGILE_TABLE_DATA":{"ECOSAGILE_ERROR_MESSAGE":{"CODE":"FAIL","MESSAGE":"no rights"}}}`
			_, err := dir.AllEmployees(ctx)

			Convey("Then it is a remote error", func() {
				So(errors.Is(err, model.ErrRemoteAPI), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "no rights")
			})
		})
	})
}
