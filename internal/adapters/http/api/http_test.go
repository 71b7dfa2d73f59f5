package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/robocloud/internal/adapters/http/api"
	"github.com/okian/robocloud/internal/adapters/mq/queue"
	"github.com/okian/robocloud/internal/adapters/preview"
	"github.com/okian/robocloud/internal/adapters/publisher"
	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/dedupe"
	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/types"
)

type mockDependencies struct {
	*publisher.Latest
	submitted []model.JointState
	err       error
}

func (m *mockDependencies) Submit(_ context.Context, js model.JointState) error {
	if m.err != nil {
		return m.err
	}
	if err := js.Validate(); err != nil {
		return err
	}
	m.submitted = append(m.submitted, js)
	return nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	stats := &mockStatsProvider{stats: map[string]interface{}{"frames_published": 3}}
	server := api.NewServer("joint_states", deps, stats, preview.NewRenderer(preview.WithGrid(8), preview.WithSize(32)))
	mux := http.NewServeMux()
	server.Register(mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func sampleFrame() *cloud.Frame {
	return &cloud.Frame{
		FrameID: "base_link",
		Stamp:   time.Unix(0, 42),
		Seq:     1,
		Points:  []cloud.Point{{X: 1, Y: 0, Z: 5}, {X: 0, Y: 1, Z: 0}},
		Tags:    []uint32{0, 1},
	}
}

func publishSample(l *publisher.Latest) {
	So(l.Publish(context.Background(), sampleFrame()), ShouldBeNil)
}

func TestTopics(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{Latest: publisher.NewLatest()}
		mux := newMux(deps)
		body := `{"id":"m1","name":["pan"],"position":[0.25]}`

		Convey("When a joint state is posted to the configured topic", func() {
			w := do(mux, http.MethodPost, "/topics/joint_states", body)

			Convey("Then it should be accepted and submitted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var resp types.AcceptedResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "accepted")
				So(resp.ID, ShouldEqual, "m1")
				So(len(deps.submitted), ShouldEqual, 1)
				So(deps.submitted[0].Source, ShouldEqual, api.Source)
			})
		})

		Convey("When posting to another topic", func() {
			w := do(mux, http.MethodPost, "/topics/other", body)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(deps.submitted, ShouldBeEmpty)
			})
		})

		Convey("When the body names a different topic", func() {
			w := do(mux, http.MethodPost, "/topics/joint_states", `{"topic":"x","name":["pan"],"position":[1]}`)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/topics/joint_states", "{")

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp types.ErrorResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Error, ShouldNotBeEmpty)
			})
		})

		Convey("When names and positions do not pair up", func() {
			w := do(mux, http.MethodPost, "/topics/joint_states", `{"name":["pan","tilt"],"position":[1]}`)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the message is a duplicate", func() {
			deps.err = dedupe.ErrDuplicate
			w := do(mux, http.MethodPost, "/topics/joint_states", body)

			Convey("Then it should return 200 with status duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate"`)
			})
		})

		Convey("When the queue is full", func() {
			deps.err = queue.ErrQueueFull
			w := do(mux, http.MethodPost, "/topics/joint_states", body)

			Convey("Then it should return 429", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When the queue is closed", func() {
			deps.err = queue.ErrQueueClosed
			w := do(mux, http.MethodPost, "/topics/joint_states", body)

			Convey("Then it should return 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When submission fails unexpectedly", func() {
			deps.err = errors.New("boom")
			w := do(mux, http.MethodPost, "/topics/joint_states", body)

			Convey("Then it should return 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When using GET on the topic", func() {
			w := do(mux, http.MethodGet, "/topics/joint_states", "")

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestCloud(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{Latest: publisher.NewLatest()}
		mux := newMux(deps)

		Convey("When no frame has been published", func() {
			paths := []string{"/cloud", "/cloud2", "/cloud/preview.webp", "/cloud/preview.png"}

			Convey("Then every cloud endpoint should return 503", func() {
				for _, p := range paths {
					So(do(mux, http.MethodGet, p, "").Code, ShouldEqual, http.StatusServiceUnavailable)
				}
			})
		})

		Convey("When a frame has been published", func() {
			publishSample(deps.Latest)

			Convey("Then /cloud should return points and the intensity channel", func() {
				w := do(mux, http.MethodGet, "/cloud", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var msg types.PointCloudMessage
				So(json.Unmarshal(w.Body.Bytes(), &msg), ShouldBeNil)
				So(msg.FrameID, ShouldEqual, "base_link")
				So(msg.Points, ShouldResemble, [][3]float32{{1, 0, 5}, {0, 1, 0}})
				So(msg.Channels[0].Name, ShouldEqual, "intensity")
				So(msg.Channels[0].Values, ShouldResemble, []float32{0, 1})
			})

			Convey("Then /cloud2 should return the packed layout", func() {
				w := do(mux, http.MethodGet, "/cloud2", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var pc cloud.PointCloud2
				So(json.Unmarshal(w.Body.Bytes(), &pc), ShouldBeNil)
				So(pc.Width, ShouldEqual, uint32(2))
				So(pc.PointStep, ShouldEqual, uint32(cloud.PointStep))
				So(len(pc.Fields), ShouldEqual, 4)
				want, err := cloud.EncodePointCloud2(sampleFrame(), nil)
				So(err, ShouldBeNil)
				So(pc.Data, ShouldResemble, want.Data)
			})

			Convey("Then the PNG preview should be served", func() {
				w := do(mux, http.MethodGet, "/cloud/preview.png", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
			})

			Convey("Then the WebP preview should be served", func() {
				w := do(mux, http.MethodGet, "/cloud/preview.webp", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/webp")
				So(bytes.HasPrefix(w.Body.Bytes(), []byte("RIFF")), ShouldBeTrue)
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{Latest: publisher.NewLatest()})

		Convey("When requesting /stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then it should return the provider's stats as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(w.Body.String(), ShouldContainSubstring, `"frames_published":3`)
			})
		})

		Convey("When posting to /stats", func() {
			w := do(mux, http.MethodPost, "/stats", "")

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When requesting /healthz after some traffic", func() {
			do(mux, http.MethodGet, "/stats", "")
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then it should expose Prometheus metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "robocloud_http_requests_total")
			})
		})
	})
}
