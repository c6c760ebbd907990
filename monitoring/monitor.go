// Package monitoring turns a running gateway into a small web server so
// its window and traffic progress can be observed from outside.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/nexuslab/tdma/tdma"
)

// Monitor exposes a gateway's status over HTTP.
type Monitor struct {
	gateway    *tdma.Gateway
	portNumber int
	addr       string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterGateway registers the gateway to be monitored.
func (m *Monitor) RegisterGateway(g *tdma.Gateway) {
	m.gateway = g
}

// Addr returns the address the monitor is serving on, once started.
func (m *Monitor) Addr() string {
	return m.addr
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := m.Router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	m.addr = "http://localhost:" + strconv.Itoa(port)
	fmt.Fprintf(os.Stderr, "Monitoring gateway with %s\n", m.addr)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// Router builds the monitor's HTTP routes.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/resource", m.listResources)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.gateway.Status())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
