package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/net/context"
)

type httpConfigService struct {
	srv     *http.Server
	handler *APIHandler
}

func (h *httpConfigService) launch(handler *APIHandler, addr string) {
	h.handler = handler
	// start a web server that handles JSON and static content
	r := mux.NewRouter()

	// auth middleware
	r.Use(handler.BasicAuth)
	// static server
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./static")))).Methods("GET")
	// api server
	r.HandleFunc("/api/status", handler.apiStatus).Methods("GET")
	r.HandleFunc("/api/time", handler.apiTime).Methods("POST")
	r.HandleFunc("/api/depoison", handler.apiDepoison).Methods("POST")
	r.HandleFunc("/api/calibrate", handler.apiCalibrate).Methods("POST")
	r.HandleFunc("/api/dwell", handler.apiDwell).Methods("POST")

	// root handler
	r.HandleFunc("/", handler.rootHandler)

	h.srv = &http.Server{Addr: addr, Handler: r}

	// add to the wg
	wg.Add(1)

	// launch the server
	go func() {
		defer wg.Done()
		handler.rt.logger.Println("starting config service http server")
		err := h.srv.ListenAndServe()
		handler.rt.logger.Println(err.Error())
	}()
}

func (h *httpConfigService) stop() {
	if h.srv != nil {
		h.srv.Shutdown(context.Background())
	}
}
