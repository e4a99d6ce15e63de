package app

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/tiltframe/internal/compass"
	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/platform"
	"github.com/relabs-tech/tiltframe/internal/rotation"
	"github.com/relabs-tech/tiltframe/internal/sensors"
)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, v any) error {
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic, b})
	return nil
}

func (p *fakePublisher) onTopic(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, m := range p.msgs {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func TestClientID(t *testing.T) {
	a := clientID("tiltframe", "web")
	b := clientID("tiltframe", "web")

	assert.True(t, strings.HasPrefix(a, "tiltframe-web-"))
	assert.Len(t, a, len("tiltframe-web-")+8)
	assert.NotEqual(t, a, b)
}

func TestProducer_PublishesSnapshots(t *testing.T) {
	topics := config.Default().Topics
	hub := platform.NewHub()
	hub.SetScreenOrientation(90)

	o := orientation.NewDeviceOrientation(hub, orientation.Options{Mode: orientation.ModeGame})
	m := motion.NewDeviceMotion(hub)
	pub := &fakePublisher{}

	p := newProducer(o, m, pub, topics)
	p.start()

	for i := 0; i < 10; i++ {
		hub.PublishOrientation(orientation.Sample{Alpha: orientation.Float(100)})
	}
	hub.PublishOrientation(orientation.Sample{Alpha: orientation.Float(130), Beta: orientation.Float(10)})
	hub.PublishMotion(motion.Sample{Acceleration: &motion.Vector{X: 1, Y: 2, Z: 3}})

	msgs := pub.onTopic(topics.Orientation)
	require.Len(t, msgs, 11)

	var snap orientation.Snapshot
	require.NoError(t, json.Unmarshal(msgs[10].payload, &snap))
	assert.Equal(t, orientation.Locked, snap.Calibration.State)
	assert.InDelta(t, 130, *snap.Raw.Alpha, 1e-9)
	assert.InDelta(t, 120, snap.FixedFrame.Euler.Alpha, 1e-6)
	assert.InDelta(t, 10, snap.FixedFrame.Euler.Beta, 1e-6)
	assert.Equal(t, rotation.ScreenRotation90, snap.ScreenAngle)

	motionMsgs := pub.onTopic(topics.Motion)
	require.Len(t, motionMsgs, 1)
	var ms motion.Snapshot
	require.NoError(t, json.Unmarshal(motionMsgs[0].payload, &ms))
	assert.Equal(t, motion.Vector{X: -2, Y: 1, Z: 3}, ms.Acceleration)

	p.stop()
	hub.PublishOrientation(orientation.Sample{Alpha: orientation.Float(1)})
	assert.Len(t, pub.onTopic(topics.Orientation), 11)
}

func TestProducer_PublishErrorsAreNotFatal(t *testing.T) {
	hub := platform.NewHub()
	o := orientation.NewDeviceOrientation(hub, orientation.Options{})
	m := motion.NewDeviceMotion(hub)

	p := newProducer(o, m, &fakePublisher{err: errors.New("broker down")}, config.Default().Topics)
	p.start()
	defer p.stop()

	hub.PublishOrientation(orientation.Sample{Alpha: orientation.Float(5)})
	assert.True(t, o.HasData())
}

func TestNewFeed_Mock(t *testing.T) {
	cfg := config.Default().IMU
	feed, err := newFeed(cfg, compass.NewTracker(0))
	require.NoError(t, err)

	o, m, err := feed.Next()
	require.NoError(t, err)
	assert.NotNil(t, o.Alpha)
	assert.NotNil(t, m.AccelerationIncludingGravity)
}

func TestNewFeed_MockRaw(t *testing.T) {
	cfg := config.Default().IMU
	cfg.UseMockRaw = true

	tracker := compass.NewTracker(time.Minute)
	tracker.Update(compass.Reading{Heading: 42, Accuracy: 0, Source: "HDT"})

	feed, err := newFeed(cfg, tracker)
	require.NoError(t, err)

	o, m, err := feed.Next()
	require.NoError(t, err)

	// First tick integrates 15°/s over the assumed 100ms.
	require.NotNil(t, o.Alpha)
	assert.InDelta(t, 1.5, *o.Alpha, 1e-9)
	assert.False(t, o.IsAbsolute())
	require.NotNil(t, o.CompassHeading)
	assert.Equal(t, 42.0, *o.CompassHeading)

	require.NotNil(t, m.RotationRate)
	assert.InDelta(t, 15, m.RotationRate.Alpha, 1e-9)
	require.NotNil(t, m.AccelerationIncludingGravity)
	assert.InDelta(t, 9.80665, m.AccelerationIncludingGravity.Z, 0.1)
}

func TestRunHub_LogsOnlyUnexpectedStops(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	feed := sensors.NewSourceFeed(orientation.NewMockSource())

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	runHub(canceled, platform.NewHub(), feed, time.Hour)
	assert.Empty(t, hook.AllEntries())

	expired, cancel2 := context.WithTimeout(context.Background(), 0)
	defer cancel2()
	runHub(expired, platform.NewHub(), feed, time.Hour)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "mock console: sample feed stopped", entry.Message)
	assert.ErrorIs(t, entry.Data[log.ErrorKey].(error), context.DeadlineExceeded)
}

func TestHandleCompassLine(t *testing.T) {
	pub := &fakePublisher{}
	tr := compass.NewTracker(time.Minute)

	handleCompassLine("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47", tr, pub, "c")
	handleCompassLine("$GPHDT,274.07,T*00", tr, pub, "c")
	assert.Empty(t, pub.msgs)

	handleCompassLine("$GPHDT,274.07,T*03", tr, pub, "c")
	require.Len(t, pub.msgs, 1)

	var r compass.Reading
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &r))
	assert.Equal(t, 274.07, r.Heading)
	assert.False(t, r.Time.IsZero())

	latest, ok := tr.Latest()
	require.True(t, ok)
	assert.Equal(t, 274.07, latest.Heading)
}

func testSnapshot(t *testing.T) orientation.Snapshot {
	t.Helper()
	hub := platform.NewHub()
	o := orientation.NewDeviceOrientation(hub, orientation.Options{})
	o.Start(nil)
	hub.PublishOrientation(orientation.Sample{
		Alpha: orientation.Float(45), Beta: orientation.Float(10), Gamma: orientation.Float(-5),
		Absolute: orientation.Bool(true),
	})
	return o.Snapshot()
}

func TestWebServer_API(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>tiltframe</h1>"), 0o644))

	s := newWebServer()
	ts := httptest.NewServer(s.handler(dir))
	defer ts.Close()

	for _, path := range []string{"/api/orientation", "/api/motion"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}

	snap := testSnapshot(t)
	s.setOrientation(snap)
	s.setMotion(motion.Snapshot{Acceleration: motion.Vector{X: 1}})

	resp, err := http.Get(ts.URL + "/api/orientation")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got orientation.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.InDelta(t, 45, got.FixedFrame.Euler.Alpha, 1e-6)
	assert.True(t, got.Absolute)

	resp2, err := http.Get(ts.URL + "/api/motion")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var gotMotion motion.Snapshot
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&gotMotion))
	assert.Equal(t, 1.0, gotMotion.Acceleration.X)

	resp3, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestWebServer_WebSocket(t *testing.T) {
	s := newWebServer()
	ts := httptest.NewServer(s.handler(t.TempDir()))
	defer ts.Close()

	first := testSnapshot(t)
	s.setOrientation(first)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// The last snapshot arrives right away.
	var got orientation.Snapshot
	require.NoError(t, conn.ReadJSON(&got))
	assert.InDelta(t, 45, *got.Raw.Alpha, 1e-9)

	next := first
	next.Raw.Alpha = orientation.Float(90)
	s.setOrientation(next)

	require.NoError(t, conn.ReadJSON(&got))
	assert.InDelta(t, 90, *got.Raw.Alpha, 1e-9)
}

func TestSnapshotBroadcaster(t *testing.T) {
	b := newSnapshotBroadcaster()

	_, ok := b.Latest()
	assert.False(t, ok)

	id, ch := b.Subscribe(1)
	b.Publish(orientation.Snapshot{ScreenAngle: 1})
	b.Publish(orientation.Snapshot{ScreenAngle: 2}) // dropped, buffer full

	got := <-ch
	assert.Equal(t, 1.0, got.ScreenAngle)

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 2.0, latest.ScreenAngle)

	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	b.Unsubscribe(id)
}

func countOn(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderSnapshot(t *testing.T) {
	waiting := renderSnapshot(nil, "euler")
	assert.Equal(t, image.Rect(0, 0, 128, 64), waiting.Bounds())
	assert.Positive(t, countOn(waiting))

	snap := testSnapshot(t)
	euler := renderSnapshot(&snap, "euler")
	quat := renderSnapshot(&snap, "quaternion")
	assert.Positive(t, countOn(euler))
	assert.NotEqual(t, euler.Pix, quat.Pix)

	assert.Zero(t, countOn(renderLines()))
}

func TestFormat(t *testing.T) {
	snap := testSnapshot(t)
	line := formatOrientation(snap)
	assert.Contains(t, line, "fixed α= 45.00")
	assert.Contains(t, line, "cal=uncalibrated")

	assert.Equal(t,
		"[MOTION] g x=  0.00 y=  0.00 z=  9.81  rate α=   1.00 β=   0.00 γ=   0.00",
		formatMotion(motion.Snapshot{
			AccelerationIncludingGravity: motion.Vector{Z: 9.81},
			RotationRate:                 motion.RotationRate{Alpha: 1},
		}))

	assert.Equal(t,
		"[COMPASS] heading= 12.50 accuracy=  0.0 source=HDT",
		formatCompass(compass.Reading{Heading: 12.5, Source: "HDT"}))
}

func TestThrottle(t *testing.T) {
	var printed []string
	clock := time.Unix(0, 0)

	th := newThrottle(time.Second, func(s string) { printed = append(printed, s) })
	th.now = func() time.Time { return clock }

	th.Println("a")
	clock = clock.Add(500 * time.Millisecond)
	th.Println("b")
	clock = clock.Add(500 * time.Millisecond)
	th.Println("c")

	assert.Equal(t, []string{"a", "c"}, printed)
}
