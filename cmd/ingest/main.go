package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/demandiq/backend-go/internal/config"
	"github.com/demandiq/backend-go/internal/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// The ingest sidecar accepts raw dataset CSVs and stages them in the
// object bucket. The API server never takes uploads directly; it reads
// whatever dataset the operator pulls down from the bucket.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	objectStore, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Create router
	r := mux.NewRouter()

	handler := &ingestHandler{store: objectStore}
	r.HandleFunc("/datasets", handler.list).Methods("GET")
	r.HandleFunc("/datasets/{name}", handler.upload).Methods("PUT")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

const maxUploadBytes = 256 << 20

type ingestHandler struct {
	store storage.ObjectStorage
}

func (h *ingestHandler) list(w http.ResponseWriter, r *http.Request) {
	objects, err := h.store.ListObjects(r.Context(), "datasets/")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(objects)
}

func (h *ingestHandler) upload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if path.Ext(name) != ".csv" {
		http.Error(w, "only .csv uploads are accepted", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty upload", http.StatusBadRequest)
		return
	}

	key := "datasets/" + path.Base(name)
	if err := h.store.UploadObject(r.Context(), key, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("Staged dataset %s (%d bytes) at %s\n", key, len(data), time.Now().Format(time.RFC3339))
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"key": key, "size": len(data)})
}
