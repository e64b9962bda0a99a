package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/runtime"
	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/store"
	logpkg "github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/unified"
)

// defaultStoreID serves requests that name no store.
const defaultStoreID = "drag"

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	mux := http.NewServeMux()
	s := &Server{rt: rt, srv: &http.Server{Handler: cors(mux)}, logger: logger.WithComponent("http")}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/data/put", s.handlePut)
	mux.HandleFunc("/v1/data/get", s.handleGet)
	mux.HandleFunc("/v1/data/summary", s.handleSummary)
	mux.HandleFunc("/v1/data/update", s.handleUpdate)
	mux.HandleFunc("/v1/data/delete", s.handleDelete)
	mux.HandleFunc("/v1/data/list", s.handleList)
	mux.HandleFunc("/v1/data/sync", s.handleSync)
	mux.HandleFunc("/v1/data/clear", s.handleClear)
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeStoreError maps store error kinds onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) store(storeID string) (*store.RuntimeStore, error) {
	if storeID == "" {
		storeID = defaultStoreID
	}
	return s.rt.Store(storeID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

type putReq struct {
	StoreID    string       `json:"storeId"`
	Intention  string       `json:"intention"`
	BundleName string       `json:"bundleName"`
	GroupID    string       `json:"groupId"`
	IsPrivate  bool         `json:"isPrivate"`
	Records    []wireRecord `json:"records"`
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req putReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	data, err := dataFromPutReq(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.store(req.StoreID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := st.Put(data); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]string{"key": data.Runtime.Key.String()})
}

func dataFromPutReq(req *putReq) (*unified.Data, error) {
	if req.Intention == "" || req.BundleName == "" {
		return nil, errors.New("intention and bundleName are required")
	}
	key := unified.Key{Intention: req.Intention, BundleName: req.BundleName, GroupID: req.GroupID}
	if key.GroupID == "" {
		key = unified.NewKey(req.Intention, req.BundleName)
	}
	now := time.Now().UnixMilli()
	data := unified.NewData()
	data.Runtime = &unified.Runtime{
		Key:              key,
		IsPrivate:        req.IsPrivate,
		CreateTime:       now,
		LastModifiedTime: now,
		CreatePackage:    req.BundleName,
	}
	for _, wr := range req.Records {
		rec, err := recordFromWire(wr)
		if err != nil {
			return nil, err
		}
		data.AddRecord(rec)
	}
	data.Runtime.RecordTotalNum = uint32(len(data.Records))
	return data, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	key := r.URL.Query().Get("key")
	st, err := s.store(r.URL.Query().Get("store"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := st.Get(key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out, err := dataToWire(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	key := r.URL.Query().Get("key")
	st, err := s.store(r.URL.Query().Get("store"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	sum, err := st.GetSummary(key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]any{"summary": sum.Summary, "totalSize": sum.TotalSize})
}

type updateReq struct {
	StoreID string       `json:"storeId"`
	Key     string       `json:"key"`
	Records []wireRecord `json:"records"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	key, err := unified.ParseKey(req.Key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.store(req.StoreID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	// Keep creation metadata from the stored object when present.
	old, err := st.Get(req.Key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	now := time.Now().UnixMilli()
	data := unified.NewData()
	data.Runtime = &unified.Runtime{Key: key, CreateTime: now, LastModifiedTime: now}
	if old.Runtime != nil {
		rt := *old.Runtime
		rt.LastModifiedTime = now
		data.Runtime = &rt
	}
	for _, wr := range req.Records {
		rec, err := recordFromWire(wr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data.AddRecord(rec)
	}
	data.Runtime.RecordTotalNum = uint32(len(data.Records))
	if err := st.Update(data); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]string{"key": req.Key})
}

type deleteReq struct {
	StoreID string   `json:"storeId"`
	Keys    []string `json:"keys"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req deleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := s.store(req.StoreID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := st.DeleteBatch(req.Keys); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = store.DataPrefix
	}
	st, err := s.store(r.URL.Query().Get("store"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	datas, err := st.GetDatas(prefix)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]wireData, 0, len(datas))
	for _, d := range datas {
		wd, err := dataToWire(d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, wd)
	}
	writeJSON(w, map[string]any{"datas": out})
}

type syncReq struct {
	StoreID string   `json:"storeId"`
	Devices []string `json:"devices"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req syncReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	devices := req.Devices
	if len(devices) == 0 {
		devices = s.rt.SyncDevices()
	}
	if len(devices) == 0 {
		writeError(w, http.StatusBadRequest, "no sync devices given or configured")
		return
	}
	st, err := s.store(req.StoreID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := st.Sync(devices); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type clearReq struct {
	StoreID string `json:"storeId"`
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req clearReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := s.store(req.StoreID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := st.Clear(); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
