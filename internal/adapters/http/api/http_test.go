package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/rankscope/internal/adapters/http/api"
	"github.com/okian/rankscope/internal/adapters/rankapi"
	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/domain/align"
	"github.com/okian/rankscope/internal/domain/ingest"
	"github.com/okian/rankscope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records calls and returns canned results.
type mockDependencies struct {
	ranks      map[string][]model.Sample
	lastWindow [2]string
	domains    []model.DomainSummary
	uploaded   []service.UploadRequest
	uploadBody string
	uploadErr  error
	deleted    []string
	suggest    []string
	lastLimit  int
	cmp        service.Comparison
	cmpErr     error
	lastCmp    service.CompareRequest
}

func (m *mockDependencies) Ranks(_ context.Context, domain, start, end string) ([]model.Sample, error) {
	m.lastWindow = [2]string{start, end}
	return m.ranks[domain], nil
}

func (m *mockDependencies) Domains(context.Context) ([]model.DomainSummary, error) {
	return m.domains, nil
}

func (m *mockDependencies) Upload(_ context.Context, req service.UploadRequest) (service.UploadResult, error) {
	if req.Reader != nil {
		b, _ := io.ReadAll(req.Reader)
		m.uploadBody = string(b)
	}
	m.uploaded = append(m.uploaded, req)
	if m.uploadErr != nil {
		return service.UploadResult{}, m.uploadErr
	}
	return service.UploadResult{Success: true, Domain: ingest.ResolveDomainName(req.Domain, req.Filename), Count: 2}, nil
}

func (m *mockDependencies) Delete(_ context.Context, domain string) error {
	if domain != "known.com" {
		return service.ErrUnknownDomain
	}
	m.deleted = append(m.deleted, domain)
	return nil
}

func (m *mockDependencies) Suggest(_ context.Context, _ string, limit int) ([]string, error) {
	m.lastLimit = limit
	return m.suggest, nil
}

func (m *mockDependencies) Compare(_ context.Context, req service.CompareRequest) (service.Comparison, error) {
	m.lastCmp = req
	return m.cmp, m.cmpErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.ServerOption) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorBody(w *httptest.ResponseRecorder) string {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Error
}

func multipartUpload(t *testing.T, filename, content, domain string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(content))
	}
	if domain != "" {
		_ = mw.WriteField("domain", domain)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/domains", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then health endpoint should serve metrics", func() {
			w := do(mux, httptest.NewRequest("GET", "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(mux, httptest.NewRequest("GET", "/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And unknown paths are not found", func() {
			w := do(mux, httptest.NewRequest("GET", "/unknown", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRanksHandler(t *testing.T) {
	Convey("Given stored ranks", t, func() {
		deps := &mockDependencies{ranks: map[string][]model.Sample{
			"a.com": {{Date: "2024-01-01", Rank: 3}},
		}}
		mux := newMux(deps)

		Convey("When the domain parameter is missing", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/ranks?start_date=2024-01-01", nil))

			Convey("Then the response is 400 with an error body", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorBody(w), ShouldEqual, "Domain parameter is required")
			})
		})

		Convey("When the domain is known", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/ranks?domain=a.com&start_date=2024-01-01&end_date=2024-01-31", nil))

			Convey("Then ranks are returned and the window is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `{"ranks":[{"date":"2024-01-01","rank":3}]}`)
				So(deps.lastWindow, ShouldResemble, [2]string{"2024-01-01", "2024-01-31"})
			})
		})

		Convey("When the domain is unknown", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/ranks?domain=nope", nil))

			Convey("Then an empty list is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"ranks":[]}`)
			})
		})

		Convey("When read through the rank API client", func() {
			srv := httptest.NewServer(mux)
			defer srv.Close()
			got, err := rankapi.New(srv.URL).Samples(context.Background(), "a.com", "", "")

			Convey("Then the contract round-trips", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []model.Sample{{Date: "2024-01-01", Rank: 3}})
			})
		})
	})
}

func TestDomainsHandler(t *testing.T) {
	Convey("Given a domains handler", t, func() {
		deps := &mockDependencies{domains: []model.DomainSummary{{Domain: "b.com", Count: 1}, {Domain: "a.com", Count: 2}}}
		mux := newMux(deps)

		Convey("When listing", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/domains", nil))

			Convey("Then summaries keep their order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []model.DomainSummary
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got[0].Domain, ShouldEqual, "b.com")
			})
		})

		Convey("When uploading a file with a domain override", func() {
			w := do(mux, multipartUpload(t, "ranks.csv", "2024-01,1\n2024-02,2\n", "override.org"))

			Convey("Then the upload is created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Body.String(), ShouldContainSubstring, `"domain":"override.org"`)
				So(deps.uploaded[0].Filename, ShouldEqual, "ranks.csv")
				So(deps.uploaded[0].Size, ShouldEqual, int64(len("2024-01,1\n2024-02,2\n")))
				So(deps.uploadBody, ShouldEqual, "2024-01,1\n2024-02,2\n")
			})
		})

		Convey("When the upload has no valid rows", func() {
			deps.uploadErr = ingest.ErrNoValidData
			w := do(mux, multipartUpload(t, "bad.csv", "nope", ""))

			Convey("Then it is unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(errorBody(w), ShouldEqual, "no valid data found in CSV file")
			})
		})

		Convey("When the file part is missing", func() {
			w := do(mux, multipartUpload(t, "", "", "x"))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the upload is too large", func() {
			small := newMux(deps, api.WithMaxUploadBytes(16))
			w := do(small, multipartUpload(t, "big.csv", strings.Repeat("2024-01-01,1\n", 100), ""))
			So(w.Code, ShouldBeIn, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest})
			So(deps.uploaded, ShouldBeEmpty)
		})

		Convey("When deleting", func() {
			ok := do(mux, httptest.NewRequest("DELETE", "/api/domains/known.com", nil))
			missing := do(mux, httptest.NewRequest("DELETE", "/api/domains/other.com", nil))

			Convey("Then known domains go and unknown ones are 404", func() {
				So(ok.Code, ShouldEqual, http.StatusNoContent)
				So(missing.Code, ShouldEqual, http.StatusNotFound)
				So(errorBody(missing), ShouldEqual, "domain not found")
				So(deps.deleted, ShouldResemble, []string{"known.com"})
			})
		})

		Convey("When using another method", func() {
			w := do(mux, httptest.NewRequest("PUT", "/api/domains", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSuggestHandler(t *testing.T) {
	Convey("Given suggestions", t, func() {
		deps := &mockDependencies{suggest: []string{"google.com"}}
		mux := newMux(deps)

		Convey("Then the limit is parsed", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/suggest?q=goo&limit=3", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `["google.com"]`)
			So(deps.lastLimit, ShouldEqual, 3)
		})

		Convey("Then a bad limit is rejected", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/suggest?q=goo&limit=abc", nil))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestCompareHandler(t *testing.T) {
	Convey("Given a comparison result", t, func() {
		series := align.Align(map[string][]model.Sample{
			"a.com": {{Date: "2024-01-01", Rank: 10}, {Date: "2024-01-02", Rank: 20}},
			"b.com": {{Date: "2024-01-02", Rank: 5}},
		}, "", "")
		deps := &mockDependencies{cmp: service.Comparison{
			Start:  "2024-01-01",
			End:    "2024-01-02",
			Series: series,
			Stats:  []model.DomainStats{{Domain: "a.com", Mean: 15, StdDev: 5, Min: 10, Max: 20, Count: 2}, {Domain: "b.com", Mean: 5, Min: 5, Max: 5, Count: 1}},
		}}
		mux := newMux(deps)

		Convey("When comparing with repeated and listed domains", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/compare?domain=a.com&domains=b.com,c.com&start_date=2024-01-01&end_date=2024-01-02", nil))

			Convey("Then parameters reach the service and charts are attached", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastCmp.Domains, ShouldResemble, []string{"a.com", "b.com", "c.com"})
				So(deps.lastCmp.Start, ShouldEqual, "2024-01-01")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `"axis":["2024-01-01","2024-01-02"]`)
				So(body, ShouldContainSubstring, `"b.com":[null,5]`)
				So(body, ShouldContainSubstring, `"type":"line"`)
				So(body, ShouldContainSubstring, `"type":"bubble"`)
			})
		})

		Convey("When the service rejects the request", func() {
			deps.cmpErr = service.ErrTooFewDomains
			w := do(mux, httptest.NewRequest("GET", "/api/compare?domain=a.com", nil))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorBody(w), ShouldEqual, service.ErrTooFewDomains.Error())
		})

		Convey("When nothing is found", func() {
			deps.cmpErr = service.ErrNoData
			deps.cmp.Failures = map[string]string{"b.com": "boom"}
			w := do(mux, httptest.NewRequest("GET", "/api/compare?domain=a.com&domain=b.com", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"failures":{"b.com":"boom"}`)
		})

		Convey("When the service fails unexpectedly", func() {
			deps.cmpErr = errors.New("kaput")
			w := do(mux, httptest.NewRequest("GET", "/api/compare?domain=a&domain=b", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When exporting", func() {
			w := do(mux, httptest.NewRequest("GET", "/api/export?domain=a.com&domain=b.com", nil))

			Convey("Then an HTML attachment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="rankscope-a.com_vs_b.com.html"`)
				So(w.Body.String(), ShouldContainSubstring, "<canvas")
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		h := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		Convey("Then an incoming id is echoed", func() {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := do(h, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("Then a missing id is generated", func() {
			w := do(h, httptest.NewRequest("GET", "/", nil))
			So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
		})
	})
}
