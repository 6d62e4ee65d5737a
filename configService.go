package main

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"
)

type hvStatus struct {
	TargetVolts int    `json:"targetVolts"`
	Period      uint32 `json:"period"`
	Pulse       uint32 `json:"pulse"`
	Smoothed    int    `json:"smoothed"`
	Feedback    bool   `json:"feedback"`
}

type configResponse struct {
	Response string    `json:"response"`
	Error    string    `json:"error,omitempty"`
	Time     string    `json:"time,omitempty"`
	Features []string  `json:"features,omitempty"`
	Hv       *hvStatus `json:"hv,omitempty"`
}

// APIHandler - settings for the thing that handles HTTP requests
type APIHandler struct {
	rt     runtimeConfig
	secret string
	user   string
	realm  string
}

// NewHandler - create a new API handler
func NewHandler(rt runtimeConfig) APIHandler {
	secret := rt.settings.GetString(sAPISecret)
	if secret == "" {
		// nothing configured, mint one and put it in the log
		secret = rt.clock.Now().String()
		rt.logger.Printf("api secret: %s", secret)
	}
	return APIHandler{
		rt:     rt,
		secret: secret,
		user:   "pinixie",
		realm:  "pinixie",
	}
}

// BasicAuth binds to a object instance, and without accessors it
// will bind the string values instead of references
func (m *APIHandler) getUser() string {
	return m.user
}

func (m *APIHandler) getSecret() string {
	return m.secret
}

func (m *APIHandler) getRealm() string {
	return m.realm
}

// BasicAuth - provide a middleware to authenticate users
func (m *APIHandler) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(m.getUser())) != 1 || subtle.ConstantTimeCompare([]byte(pass), []byte(m.getSecret())) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+m.getRealm()+`"`)
			w.WriteHeader(401)
			w.Write([]byte("Unauthorised.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *APIHandler) getStatus() configResponse {
	top, on, avg, feedback := m.rt.hv.snapshot()
	cfg := m.rt.hv.config()
	return configResponse{
		Response: "OK",
		Time:     m.rt.clock.Now().Format("2006-01-02T15:04:05"),
		Features: features,
		Hv: &hvStatus{
			TargetVolts: cfg.targetVolts,
			Period:      top,
			Pulse:       on,
			Smoothed:    avg,
			Feedback:    feedback,
		},
	}
}

func writeAnswer(w http.ResponseWriter, cr configResponse) {
	output, _ := json.Marshal(cr)
	w.Write(output)
}

func (m *APIHandler) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeAnswer(w, m.getStatus())
}

func (m *APIHandler) apiTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAnswer(w, configResponse{Response: "BAD", Error: err.Error()})
		return
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", req.Time, time.Local)
	if err != nil {
		writeAnswer(w, configResponse{Response: "BAD", Error: err.Error()})
		return
	}
	m.rt.comms.clock <- setTimeMsg(t)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *APIHandler) apiDepoison(w http.ResponseWriter, r *http.Request) {
	m.rt.comms.clock <- depoisonMsg()
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *APIHandler) apiCalibrate(w http.ResponseWriter, r *http.Request) {
	m.rt.comms.clock <- calibrateMsg()
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *APIHandler) apiDwell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tube  int    `json:"tube"`
		Dwell string `json:"dwell"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAnswer(w, configResponse{Response: "BAD", Error: err.Error()})
		return
	}
	d, err := time.ParseDuration(req.Dwell)
	if err != nil {
		writeAnswer(w, configResponse{Response: "BAD", Error: err.Error()})
		return
	}
	if req.Tube >= tubeCount {
		writeAnswer(w, configResponse{Response: "BAD", Error: "no such tube"})
		return
	}
	m.rt.comms.clock <- dwellMsg(req.Tube, d)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *APIHandler) apiError(w http.ResponseWriter, r *http.Request) {
	// default is to return (?500))
	w.WriteHeader(500)
	w.Write([]byte("Error\n"))
}

func (m *APIHandler) rootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/static/index.html", 301)
}

func startConfigService(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "API"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runConfigService(rt)
	}()
}

func runConfigService(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runConfigService")
	}()

	handler := NewHandler(rt)

	addr := rt.settings.GetString(sAPIListen)
	if addr == "" {
		addr = ":8080"
	}
	rt.configService.launch(&handler, addr)

	rt.logger.Println("starting config service comms loop")
	comms := rt.comms

	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runConfigService")
			// stop the server
			rt.configService.stop()
			return
		default:
			rt.clock.Sleep(dAPISleep)
		}
	}
}
