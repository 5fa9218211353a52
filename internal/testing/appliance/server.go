package appliance

import (
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const greeting = `<?xml version="1.0" encoding="us-ascii"?>` + "\n" +
	`<junoscript version="1.0" hostname="srx-fake" release="12.3X48-D10">` + "\n"

// RPC operation names, as the first element inside <rpc>.
const (
	OpLogin       = "request-login"
	OpOpen        = "open-configuration"
	OpLoad        = "load-configuration"
	OpGet         = "get-configuration"
	OpCommit      = "commit-configuration"
	OpClose       = "close-configuration"
	OpCounters    = "get-firewall-filter-information"
	OpEndSession  = "request-end-session"
	notAuthMsg    = "not authenticated"
	loginFailMsg  = "authentication failed"
	alreadyOpen   = "configuration database already open"
	notOpen       = "configuration database is not open"
	unknownRPCMsg = "syntax error"
)

// Request is one recorded RPC.
type Request struct {
	Conn int
	Op   string
	Body string
}

// FaultAction is what an injected fault does to a matching request.
type FaultAction int

const (
	// FaultError replies with an xnm:error carrying Message.
	FaultError FaultAction = iota
	// FaultDrop closes the connection without replying.
	FaultDrop
	// FaultNotAuthenticated replies with a "not authenticated" error.
	FaultNotAuthenticated
	// FaultSilence never replies, leaving the client to time out.
	FaultSilence
)

// Fault injects a failure into the next Count requests for Op whose body
// contains Match. An empty Op matches every operation except login; a
// negative Count never expires.
type Fault struct {
	Op      string
	Match   string
	Count   int
	Action  FaultAction
	Message string
}

// Server is the fake appliance.
type Server struct {
	mu       sync.Mutex
	username string
	password string
	active   *Node
	counters map[string]map[string]int64
	requests []Request
	faults   []*Fault
	conns    map[int]*conn
	nextID   int
	closed   bool

	listeners []io.Closer
	wg        sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the accepted login.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// New returns a fake with an empty committed configuration.
func New(opts ...Option) *Server {
	s := &Server{
		username: "admin",
		password: "secret",
		active:   newNode("configuration"),
		counters: make(map[string]map[string]int64),
		conns:    make(map[int]*conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen accepts clear-text junoscript connections on addr and returns the
// bound address.
func (s *Server) Listen(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.Serve(c)
			}()
		}
	}()
	return ln.Addr().String(), nil
}

// Close stops every listener and connection.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for _, l := range s.listeners {
		_ = l.Close()
	}
	for _, c := range s.conns {
		_ = c.rw.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

type conn struct {
	id        int
	rw        io.ReadWriteCloser
	loggedIn  bool
	candidate *Node
}

// Serve speaks junoscript on rw until the peer disconnects.
func (s *Server) Serve(rw io.ReadWriteCloser) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = rw.Close()
		return
	}
	s.nextID++
	c := &conn{id: s.nextID, rw: rw}
	s.conns[c.id] = c
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c.id)
		s.mu.Unlock()
		_ = rw.Close()
	}()

	if _, err := io.WriteString(rw, greeting); err != nil {
		return
	}

	dec := xml.NewDecoder(rw)
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "rpc" {
			continue
		}

		var req Node
		if err := dec.DecodeElement(&req, &start); err != nil {
			return
		}

		reply, keepOpen := s.handle(c, &req)
		if reply != "" {
			if _, err := io.WriteString(rw, reply); err != nil {
				return
			}
		}
		if !keepOpen {
			return
		}
	}
}

func (s *Server) handle(c *conn, req *Node) (reply string, keepOpen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ""
	var body *Node
	if len(req.Nodes) > 0 {
		body = req.Nodes[0]
		op = body.tag()
	}
	raw, _ := xml.Marshal(req)
	s.requests = append(s.requests, Request{Conn: c.id, Op: op, Body: string(raw)})

	if f := s.takeFault(op, string(raw)); f != nil {
		switch f.Action {
		case FaultDrop:
			return "", false
		case FaultSilence:
			return "", true
		case FaultNotAuthenticated:
			return errorReply(notAuthMsg), true
		default:
			if op == OpLogin {
				return loginReply(false, f.Message), true
			}
			if op == OpCommit {
				return "<rpc-reply><commit-results><routing-engine>" + errorElement(f.Message) +
					"</routing-engine></commit-results></rpc-reply>\n", true
			}
			return errorReply(f.Message), true
		}
	}

	if op == OpLogin {
		ok := body.child("username") != nil && body.child("challenge-response") != nil &&
			body.child("username").text() == s.username &&
			body.child("challenge-response").text() == s.password
		c.loggedIn = ok
		if !ok {
			return loginReply(false, loginFailMsg), true
		}
		return loginReply(true, s.username), true
	}

	if !c.loggedIn {
		return errorReply(notAuthMsg), true
	}

	switch op {
	case OpOpen:
		if c.candidate != nil {
			return errorReply(alreadyOpen), true
		}
		c.candidate = s.active.clone()
		return "<rpc-reply></rpc-reply>\n", true

	case OpLoad:
		if c.candidate == nil {
			return errorReply(notOpen), true
		}
		if cfg := body.child("configuration"); cfg != nil {
			merge(c.candidate, cfg)
		}
		return "<rpc-reply><load-configuration-results><load-success/></load-configuration-results></rpc-reply>\n", true

	case OpGet:
		db := s.active
		if c.candidate != nil {
			db = c.candidate
		}
		var out *Node
		if f := body.child("configuration"); f != nil {
			out = filter(f, db)
		}
		return "<rpc-reply><configuration>" + marshalChildren(out) + "</configuration></rpc-reply>\n", true

	case OpCommit:
		if c.candidate == nil {
			return errorReply(notOpen), true
		}
		s.active = c.candidate.clone()
		return "<rpc-reply><commit-results><routing-engine><name>re0</name><commit-success/></routing-engine></commit-results></rpc-reply>\n", true

	case OpClose:
		c.candidate = nil
		return "<rpc-reply></rpc-reply>\n", true

	case OpCounters:
		name := ""
		if n := body.child("filtername"); n != nil {
			name = n.text()
		}
		return s.countersReply(name), true

	case OpEndSession:
		c.candidate = nil
		return "<rpc-reply><end-session/></rpc-reply>\n", false

	default:
		return errorReply(unknownRPCMsg), true
	}
}

func (s *Server) takeFault(op, body string) *Fault {
	for i, f := range s.faults {
		if f.Op == "" && op == OpLogin {
			continue
		}
		if f.Op != "" && f.Op != op {
			continue
		}
		if f.Match != "" && !strings.Contains(body, f.Match) {
			continue
		}
		hit := *f
		if f.Count > 0 {
			f.Count--
			if f.Count == 0 {
				s.faults = append(s.faults[:i], s.faults[i+1:]...)
			}
		}
		return &hit
	}
	return nil
}

func (s *Server) countersReply(only string) string {
	type counter struct {
		name  string
		bytes int64
	}
	filters := make(map[string][]counter)
	var order []string
	add := func(filterName, counterName string) {
		if only != "" && filterName != only {
			return
		}
		if _, ok := filters[filterName]; !ok {
			order = append(order, filterName)
		}
		for _, c := range filters[filterName] {
			if c.name == counterName {
				return
			}
		}
		filters[filterName] = append(filters[filterName], counter{name: counterName, bytes: s.counters[filterName][counterName]})
	}

	for _, f := range lookup(s.active, []string{"firewall", "family", "inet", "filter"}) {
		name := ""
		if n := f.child("name"); n != nil {
			name = n.text()
		}
		for _, term := range lookup(f, []string{"term", "then", "count"}) {
			add(name, term.text())
		}
	}
	var extra []string
	for f := range s.counters {
		extra = append(extra, f)
	}
	sort.Strings(extra)
	for _, f := range extra {
		var names []string
		for n := range s.counters[f] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			add(f, n)
		}
	}

	var b strings.Builder
	b.WriteString("<rpc-reply><firewall-information>")
	for _, f := range order {
		b.WriteString("<filter-information><filter-name>" + escape(f) + "</filter-name>")
		for _, c := range filters[f] {
			b.WriteString("<counter><counter-name>" + escape(c.name) + "</counter-name>" +
				"<packet-count>0</packet-count><byte-count>" + strconv.FormatInt(c.bytes, 10) + "</byte-count></counter>")
		}
		b.WriteString("</filter-information>")
	}
	b.WriteString("</firewall-information></rpc-reply>\n")
	return b.String()
}

func loginReply(ok bool, message string) string {
	status := "fail"
	if ok {
		status = "success"
	}
	return "<rpc-reply><authentication-response><status>" + status + "</status>" +
		"<message>" + escape(message) + "</message></authentication-response></rpc-reply>\n"
}

func errorElement(message string) string {
	return "<xnm:error><message>" + escape(message) + "</message></xnm:error>"
}

func errorReply(message string) string {
	return "<rpc-reply>" + errorElement(message) + "</rpc-reply>\n"
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Inject adds a fault.
func (s *Server) Inject(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, &f)
}

// ClearFaults removes every pending fault.
func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = nil
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the logged requests of one operation.
func (s *Server) RequestsFor(op string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Seed merges a configuration fragment straight into the committed
// configuration.
func (s *Server) Seed(fragment string) error {
	n, err := parseFragment(fragment)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merge(s.active, n)
	return nil
}

// SetCounter sets the byte count reported for a filter counter.
func (s *Server) SetCounter(filterName, counterName string, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counters[filterName] == nil {
		s.counters[filterName] = make(map[string]int64)
	}
	s.counters[filterName][counterName] = bytes
}

// Has reports whether the committed configuration holds a node at path.
// Segments are "tag" or "tag[key]", where key is the entry's name (or
// "from,to" for zone-pair policies) or a leaf's text.
//
//	srv.Has("security", "nat", "proxy-arp", "interface[ge-0/0/0.0]", "address[203.0.113.10/32]")
func (s *Server) Has(path ...string) bool {
	return s.Count(path...) > 0
}

// Count returns how many committed nodes match path.
func (s *Server) Count(path ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(lookup(s.active, path))
}

// Config returns the committed configuration as XML.
func (s *Server) Config() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "<configuration>" + marshalChildren(s.active) + "</configuration>"
}

// OpenCandidates returns the number of connections holding an open
// candidate configuration.
func (s *Server) OpenCandidates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.conns {
		if c.candidate != nil {
			n++
		}
	}
	return n
}

// Connections returns the number of live connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
