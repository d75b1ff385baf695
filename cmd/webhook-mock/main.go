// cmd/webhook-mock/main.go
//
// Local stand-in for the downstream webhook the gateway transmits payloads
// to. Pretty-prints every lead it receives so pipeline runs can be eyeballed
// without a broker.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"net/http"

	"go.uber.org/zap"

	"lead-capture-workers/internal/common/logger"
)

func main() {
	addr := flag.String("addr", ":3001", "listen address")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/lead-capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			zapLog.Error("failed to read webhook body", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			pretty.Write(body)
		}
		zapLog.Info("lead received", zap.String("payload", pretty.String()))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	zapLog.Info("mock webhook listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, mux); err != nil {
		zapLog.Fatal("mock webhook failed", zap.Error(err))
	}
}
