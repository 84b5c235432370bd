package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

// Ingestor runs one ingestion pass.
type Ingestor interface {
	Run(ctx context.Context) (domain.IngestionResult, error)
}

type Server struct {
	query  application.QueryInvoker
	ingest Ingestor
	ping   func(context.Context) error
}

func NewServer(query application.QueryInvoker, ingest Ingestor) *Server {
	return &Server{query: query, ingest: ingest}
}

// SetReadyCheck sets the function used by /readyz.
func (s *Server) SetReadyCheck(fn func(context.Context) error) { s.ping = fn }

func (s *Server) GetAssetQuotes(w http.ResponseWriter, r *http.Request) {
	var startDate, endDate string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "start_date", q, &startDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "end_date", q, &endDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	res, err := s.query.Query(r.Context(), application.QueryRequest{
		AssetName: chi.URLParam(r, "name"),
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		logx.WithFields(r.Context()).Warn("http.query_failed", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) RunIngestion(w http.ResponseWriter, r *http.Request) {
	if s.ingest == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}
	res, err := s.ingest.Run(r.Context())
	if err != nil {
		logx.WithFields(r.Context()).Error("http.ingestion_failed", zap.Error(err))
	}
	writeJSON(w, ingestionStatusCode(res.Status), res)
}

func ingestionStatusCode(st domain.IngestionStatus) int {
	switch st {
	case domain.IngestionStatusOK:
		return http.StatusOK
	case domain.IngestionStatusPartial:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func statusFor(err error) int {
	switch application.KindOf(err) {
	case application.KindInvalidArgument:
		return http.StatusBadRequest
	case application.KindStorage, application.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
