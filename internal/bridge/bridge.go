// Package bridge exposes reader events to companion tools (translation
// panes, vocabulary collectors) over a local websocket endpoint,
// advertised on the LAN via mDNS so panels find the reader without
// configuration.
package bridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/mdns"
)

const serviceType = "_inkreader._tcp"

// Event is one JSON frame pushed to attached panels.
type Event struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Server accepts panel connections on /events and broadcasts to all of
// them. Slow or dead panels are dropped, never waited on.
type Server struct {
	listener net.Listener
	httpSrv  *http.Server
	mdnsSrv  *mdns.Server
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

// Start listens on the given port (0 picks a free one) and begins
// advertising. mDNS failure is logged and tolerated; panels can still
// connect by address.
func Start(port int) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bridge listen: %w", err)
	}
	s := &Server{
		listener: ln,
		clients:  map[*websocket.Conn]bool{},
		upgrader: websocket.Upgrader{
			// Panels are local tools; any origin on this machine may attach.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	s.httpSrv = &http.Server{Handler: mux}
	go func() {
		if err := s.httpSrv.Serve(ln); err != http.ErrServerClosed {
			log.Printf("bridge: server stopped: %v", err)
		}
	}()

	s.mdnsSrv = advertise(ln.Addr().(*net.TCPAddr).Port)
	log.Printf("bridge: listening on %s", ln.Addr())
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge: upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	log.Printf("bridge: panel connected from %s", conn.RemoteAddr())

	// Panels only listen; the read loop just notices when they leave.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.remove(conn)
				return
			}
		}
	}()
}

func (s *Server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[conn] {
		delete(s.clients, conn)
		conn.Close()
		log.Printf("bridge: panel %s disconnected", conn.RemoteAddr())
	}
}

// PublishText broadcasts an extracted text selection to every panel.
func (s *Server) PublishText(text string) {
	s.publish(Event{Type: "text_extracted", Text: text})
}

func (s *Server) publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("bridge: marshal event: %v", err)
		return
	}
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("bridge: send to %s: %v", c.RemoteAddr(), err)
			s.remove(c)
		}
	}
}

// Close stops advertising, drops panels and shuts the listener.
func (s *Server) Close() {
	if s.mdnsSrv != nil {
		s.mdnsSrv.Shutdown()
	}
	s.mu.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clients = map[*websocket.Conn]bool{}
	s.mu.Unlock()
	s.httpSrv.Close()
}

// advertise registers the service in the ".local" domain. The returned
// server is nil when registration fails.
func advertise(port int) *mdns.Server {
	host, err := os.Hostname()
	if err != nil {
		log.Printf("bridge: hostname: %v", err)
		return nil
	}
	service, err := mdns.NewMDNSService(
		host, serviceType, "", "", port, nil, []string{"InkReader"},
	)
	if err != nil {
		log.Printf("bridge: mdns service: %v", err)
		return nil
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		log.Printf("bridge: mdns server: %v", err)
		return nil
	}
	return server
}
