package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/render"
)

func TestStream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stream Suite")
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readEnvelope(conn *websocket.Conn) envelope {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	Expect(err).NotTo(HaveOccurred())
	var env envelope
	Expect(json.Unmarshal(data, &env)).To(Succeed())
	return env
}

func dial(srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	Expect(err).NotTo(HaveOccurred())
	return conn
}

var _ = Describe("Hub", func() {
	var (
		hub *Hub
		srv *httptest.Server
	)

	BeforeEach(func() {
		hub = NewHub(log.New(io.Discard))
		srv = httptest.NewServer(hub)
	})

	AfterEach(func() {
		hub.Close()
		srv.Close()
	})

	It("registers and unregisters clients", func() {
		conn := dial(srv)
		Eventually(hub.ClientCount).Should(Equal(1))

		conn.Close()
		Eventually(hub.ClientCount).Should(Equal(0))
	})

	It("greets new clients", func() {
		Expect(hub.SetGreeting("table", TableInfo{Width: 10, Height: 20, Balls: 3, Radius: 1})).To(Succeed())

		conn := dial(srv)
		defer conn.Close()

		env := readEnvelope(conn)
		Expect(env.Type).To(Equal("table"))
		var info TableInfo
		Expect(json.Unmarshal(env.Data, &info)).To(Succeed())
		Expect(info).To(Equal(TableInfo{Width: 10, Height: 20, Balls: 3, Radius: 1}))
	})

	It("broadcasts frames to every client", func() {
		a, b := dial(srv), dial(srv)
		defer a.Close()
		defer b.Close()
		Eventually(hub.ClientCount).Should(Equal(2))

		s := physics.NewState(2, physics.Table{Width: 10, Height: 20})
		s.Balls[1].Position = mgl64.Vec3{3, physics.RestHeight, -4}
		s.Time = 1.5
		Expect(hub.Broadcast(render.Capture(s))).To(Succeed())

		for _, conn := range []*websocket.Conn{a, b} {
			env := readEnvelope(conn)
			Expect(env.Type).To(Equal("frame"))
			var f render.Frame
			Expect(json.Unmarshal(env.Data, &f)).To(Succeed())
			Expect(f.Time).To(Equal(1.5))
			Expect(f.Balls).To(HaveLen(2))
			Expect(f.Balls[1].Position).To(Equal([3]float32{3, 1, -4}))
			Expect(f.Balls[1].Orientation).To(Equal([4]float32{0, 0, 0, 1}))
		}
	})

	It("drops messages for a client that is not reading", func() {
		conn := dial(srv)
		defer conn.Close()
		Eventually(hub.ClientCount).Should(Equal(1))

		f := render.Capture(physics.NewState(16, physics.Table{Width: 10, Height: 20}))
		for i := 0; i < 5000; i++ {
			Expect(hub.Broadcast(f)).To(Succeed())
		}
		Expect(hub.Dropped()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Run", func() {
	It("streams frames with advancing time until canceled", func() {
		hub := NewHub(log.New(io.Discard))
		srv := httptest.NewServer(hub)
		defer srv.Close()
		defer hub.Close()

		conn := dial(srv)
		defer conn.Close()
		Eventually(hub.ClientCount).Should(Equal(1))

		s := physics.NewState(2, physics.Table{Width: 10, Height: 20})
		s.Balls[0].Position = mgl64.Vec3{-3, physics.RestHeight, 0}
		s.Balls[1].Position = mgl64.Vec3{3, physics.RestHeight, 0}
		s.Balls[0].Velocity = mgl64.Vec3{1, 0, 0}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, hub, s, physics.NewStepper(2), 0.1, 100)
		}()

		last := -1.0
		frames := 0
		for frames < 3 {
			env := readEnvelope(conn)
			if env.Type != "frame" {
				continue
			}
			var f render.Frame
			Expect(json.Unmarshal(env.Data, &f)).To(Succeed())
			Expect(f.Time).To(BeNumerically(">", last))
			last = f.Time
			frames++
		}

		cancel()
		var err error
		Eventually(done).Should(Receive(&err))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("rejects a non-positive rate", func() {
		hub := NewHub(log.New(io.Discard))
		s := physics.NewState(1, physics.Table{Width: 10, Height: 20})
		err := Run(context.Background(), hub, s, physics.NewStepper(1), 1.0/60, 0)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("stops when the state turns non-finite", func() {
		hub := NewHub(log.New(io.Discard))
		s := physics.NewState(2, physics.Table{Width: 10, Height: 20})
		s.Balls[0].Velocity = mgl64.Vec3{1, 0, 0}

		err := Run(context.Background(), hub, s, physics.NewStepper(2), 0.1, 200)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		var simErr dynamo.SimError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(0))
	})
})
