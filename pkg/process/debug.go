// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sort"
	"strings"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/spacemonkeygo/monkit/v3/present"
	"go.uber.org/zap"
)

var (
	debugAddr = flag.String("debug.addr", "", "address to listen on for debug endpoints, disabled when empty")
)

// InitDebug starts the debug endpoints when --debug.addr is set and returns
// the address they listen on.
func InitDebug(logger *zap.Logger, r *monkit.Registry) (addr net.Addr, err error) {
	if *debugAddr == "" {
		return nil, nil
	}

	ln, err := net.Listen("tcp", *debugAddr)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	go func() {
		logger.Debug("debug server listening", zap.Stringer("Address", ln.Addr()))
		err := (&http.Server{Handler: DebugHandler(r)}).Serve(ln)
		if err != nil {
			logger.Error("debug server died", zap.Error(err))
		}
	}()
	return ln.Addr(), nil
}

// DebugHandler serves profiling, monkit and health endpoints for r.
func DebugHandler(r *monkit.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/mon/", http.StripPrefix("/mon", present.HTTP(r)))
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		prometheus(w, r)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	})
	return mux
}

func sanitize(val string) string {
	// https://prometheus.io/docs/concepts/data_model/
	// specifies all metric names must match [a-zA-Z_:][a-zA-Z0-9_:]*
	if val == "" {
		return "_"
	}
	if '0' <= val[0] && val[0] <= '9' {
		val = "_" + val
	}
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z':
			return r
		case 'A' <= r && r <= 'Z':
			return r
		case '0' <= r && r <= '9':
			return r
		default:
			return '_'
		}
	}, val)
}

func prometheus(w http.ResponseWriter, r *monkit.Registry) {
	// writes https://prometheus.io/docs/instrumenting/exposition_formats/
	r.Stats(func(key monkit.SeriesKey, field string, val float64) {
		measurement := sanitize(key.Measurement)

		var metrics []string
		for tag, tagVal := range key.Tags.All() {
			metrics = append(metrics, sanitize(tag)+"=\""+sanitize(tagVal)+"\"")
		}
		sort.Strings(metrics)
		metrics = append(metrics, "field=\""+sanitize(field)+"\"")

		_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n%s{%s} %g\n",
			measurement, measurement, strings.Join(metrics, ","), val)
	})
}
